// smartcontent package provides cache-aware controllers for remotely fetched content, such as CMS driven page sections that a display layer renders later. For every cache key it keeps the fetched content, a loading flag, the last search error and a cache generation, and it decides on each search whether the content has to be fetched again.
//
// A Factory is created once per search function. Handles returned by the factory give access to the state of a single cache key. Handle.Search consults the configured Validator; if the held content is still valid, nothing happens. Otherwise the search function is called: on success the content is replaced and the cache generation advances, on failure the error is recorded in Handle.Error and the previous content stays. Search never returns the failure.
//
// Freshness can be computed by any Validator. WithRegistry makes content fresh for a fixed TTL after each fetch, recording fetches in a Registry: in memory (backend/lru) or in redis (backend/redis). A registry shared by several factories only helps handles whose generations line up, since stamps record the generation of the factory that fetched.
//
// Example use case:
//
// A storefront renders page sections fetched from a headless CMS. Sections should be fetched once per minute at most, unless an editor forces a refresh.
//
//	func searchSections(ctx context.Context, q Query) (smartcontent.Content, error) {
//		// Call the CMS API.
//	}
//
//	func main() {
//		registry, _ := lru.NewBackend(1000)
//
//		factory, err := smartcontent.New(searchSections,
//			smartcontent.WithRegistry(registry, time.Minute),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer factory.Close()
//
//		home, _ := factory.Handle("home")
//
//		home.Search(ctx, Query{Page: "home"})                      // Fetches.
//		home.Search(ctx, Query{Page: "home"})                      // Content is fresh, no fetch.
//		home.Search(ctx, Query{Page: "home"}, smartcontent.Force()) // Fetches again.
//
//		if err := home.Error().Search; err != nil {
//			log.Println("Fetching sections:", err)
//		}
//		render(home.Content())
//	}
//
// Handles are safe for concurrent use. Searches for the same key are serialized, so at most one search function call per key is in flight. A successful fetch clears the previous search error.
package smartcontent
