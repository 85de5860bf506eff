// Package pipeline runs one Pocketbook -> Readwise sync.
//
// # Flow
//
//	Authenticate → ListBooks → FetchBookHighlights (per book, concurrent)
//	  → flatten → exporters.ReadwiseHighlights → audit snapshot → CreateHighlights
//
// A run is all-or-nothing: if any stage fails, nothing is pushed. There is no
// retry and no record of previously pushed highlights; Readwise deduplicates
// on highlight_url.
//
// # Example Usage
//
//	source := pocketbook.NewClient(pocketbook.Config{})
//	sink := readwise.NewClient("")
//	p := pipeline.New(source, sink, pipeline.Config{
//		LoginProvider: cfg.Pocketbook.LoginProvider,
//		LoginData:     cfg.Pocketbook.LoginData,
//		ReadwiseToken: cfg.Readwise.Token,
//	})
//	result, err := p.Run(ctx)
package pipeline
