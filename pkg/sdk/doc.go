// Package alumdex embeds the alumni attribute search engine in a Go program.
//
// Records (alumni, job postings and events) live in Valkey, Redis or an
// embedded Badger database. Screens are search presets over one record kind:
// they pick the text fields a query matches against, the filter categories
// offered in the picker, and what to show before the user types anything.
//
// # One-shot search
//
//	client, _ := alumdex.New(ctx, alumdex.WithInMemory())
//	defer client.Close()
//	client.Records().Import(ctx, records)
//	res, _ := client.Search(alumdex.ScreenDirectory).
//	    Query("ada").
//	    Filter("company:acme", "skill:go").
//	    Do(ctx)
//
// # Interactive sessions
//
// A session keeps a screen's query and filters between calls and recomputes
// results after a quiet period:
//
//	s, _ := client.Mount(ctx, alumdex.ScreenDirectory)
//	defer s.Close()
//	s.SetQuery("lov")
//	s.Toggle("location:london")
//	s.Flush() // or wait for the debounce delay
//	state := s.State()
package alumdex
