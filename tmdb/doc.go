// Package tmdb provides a client for the TMDB v3 catalog API.
//
// Every call is authenticated with a bearer read access token. When no token
// is configured a call fails with ErrMissingCredential before any request is
// built, so callers can tell a configuration problem from a network one.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client := tmdb.NewClient(tmdb.Credentials{Token: token}, logger,
//		tmdb.WithTimeout(10*time.Second),
//	)
//
//	page, err := client.Discover(ctx, tmdb.DiscoverFilterSet{
//		MediaType: tmdb.MediaTypeMovie,
//		SortKey:   "popularity.desc",
//	}, 1)
//
// # Item normalization
//
// Trending, discover, search and person credit results are reduced to a
// single Item shape. The media type comes from the API discriminator when
// present; otherwise a record with a first air date is a TV show and
// anything else a movie.
//
// # Error Handling
//
//   - ErrMissingCredential: no token configured
//   - HTTPError: non-2xx response, with the raw body for diagnostics
//   - NetworkError: no response was received
//
// The client never retries and never swallows errors.
package tmdb
