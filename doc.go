// Package replay serves match replays stored as JSON files in a directory.
//
// Each replay lives in <dir>/<id>.json and is written by an external
// uploader. A Server keeps two in-memory views of that directory:
//
//   - a bounded LRU cache of full records (password and log included),
//     filled on demand and never invalidated by file edits
//   - a metadata index of every replay without its password or log,
//     built by a startup scan and refreshed on filesystem notifications
//
// Basic usage:
//
//	srv, _ := replay.Open("/srv/replays", replay.WithCacheSize(500))
//	defer srv.Close()
//
//	// Resolve a path segment
//	id, _ := replay.ParseIdentifier("gen9ou-123-secret.json")
//	rec, err := srv.Replay(ctx, id)
//	switch {
//	case errors.Is(err, replay.ErrForbidden): // wrong password
//	case errors.Is(err, replay.ErrNotFound):  // missing or unreadable
//	}
//	resp, _ := srv.Render(rec, id)
//
//	// List recent uploads
//	for _, m := range srv.Query(replay.Query{MinDate: since, Limit: 50}) {
//	    fmt.Println(m.ID, m.UploadTime, m.Players)
//	}
//
//	// Serve over HTTP
//	h, _ := srv.Handler()
//	http.ListenAndServe(":3000", h)
package replay
