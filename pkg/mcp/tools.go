package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listModulesTool() mcp.Tool {
	return mcp.NewTool("list_modules",
		mcp.WithDescription("Lists source modules that define custom elements, with their tag names."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("Lists custom elements as compact summaries. Filter by module path and/or a keyword matched against tag name, class name and description."),
		mcp.WithString("module", mcp.Description("Module path relative to the analyzed root, e.g. src/button.ts")),
		mcp.WithString("keyword", mcp.Description("Case-insensitive keyword")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getComponentDetailsTool() mcp.Tool {
	return mcp.NewTool("get_component_details",
		mcp.WithDescription("Returns the full contract of one or more custom elements: attributes, properties, methods, events, slots, CSS custom properties and CSS parts. Accepts tag names or class names."),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Tag names or class names, e.g. [\"my-button\", \"MyDialog\"]"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func searchComponentsTool() mcp.Tool {
	return mcp.NewTool("search_components",
		mcp.WithDescription("Searches custom elements by tag, class, description, attribute, property, event or slot name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive search text")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func findByEventTool() mcp.Tool {
	return mcp.NewTool("find_by_event",
		mcp.WithDescription("Lists custom elements that dispatch the named event."),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name, e.g. change")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getGlobalFeaturesTool() mcp.Tool {
	return mcp.NewTool("get_global_features",
		mcp.WithDescription("Returns properties, methods and events added to every element through HTMLElement and event map augmentations."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getDiagnosticsTool() mcp.Tool {
	return mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Returns analyzer diagnostics, optionally for one file."),
		mcp.WithString("file", mcp.Description("File path or path suffix")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
