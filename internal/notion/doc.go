// Package notion provides a client for the Notion pages and databases API.
//
// The client covers the small set of operations the rest of meetsync needs:
// creating pages and database rows, appending paragraphs, querying databases,
// partially updating page properties, reading pages and their child blocks,
// duplicating a template page and searching.
//
// Every call takes a context.Context, authenticates with a bearer token and
// sends the Notion-Version header. Requests are never retried. A non-2xx
// response is returned as *APIError; a create or update response without an
// id is returned as ErrMissingID.
//
// Example usage:
//
//	client := notion.NewClient(os.Getenv("NOTION_TOKEN"))
//
//	result, err := client.QueryDatabase(ctx, databaseID,
//	    notion.And(
//	        notion.DateOnOrAfter("Date", "2025-01-06"),
//	        notion.DateOnOrBefore("Date", "2025-01-12"),
//	    ),
//	    []notion.Sort{{Property: "Date", Direction: notion.Ascending}},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, page := range result.Results {
//	    title, _ := page.Properties.PlainTitle("Name")
//	    fmt.Println(title)
//	}
package notion
