// Package model defines the data structures built by a collection audit.
//
// # Fields
//
// Fields holds the values captured from one path:
//
//	fields := model.Fields{"artist": "Ария", "year": "2002", "track": "01"}
//	fields.Year()  // 2002
//	fields.Track() // 1
//
// # Database
//
// Database is the nested artist → album → tracks view of the collection:
//
//	db := model.NewDatabase()
//	db.Record(fields, "Rock/Ария/[2002] Крещение огнём/01 - Штурмовик.mp3")
//	album, _ := db.Album("Ария", "2002 Крещение огнём")
//	fmt.Println(album.Tracks[1]) // Штурмовик
//
// Artists and Albums return sorted keys so that reports built from the
// database are stable between runs.
package model
