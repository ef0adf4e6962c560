package notes

// Seed is a sample note inserted on first run.
type Seed struct {
	Title   string
	Content string
}

// DefaultSeeds are the first-run sample notes.
var DefaultSeeds = []Seed{
	{
		Title: "Welcome to Ocean Notes",
		Content: "# Welcome\n\nNotes live on this device only. Create, search, edit and delete them freely.\n\n" +
			"- Changes save automatically after you stop typing\n- Press **Ctrl+S** to save right away",
	},
	{
		Title: "Markdown tips",
		Content: "## Formatting\n\nUse **bold**, *italic* and `inline code`.\n\n" +
			"- Lists start with a dash\n* or a star\n\nLinks look like [this](https://example.com).",
	},
	{
		Title:   "Shopping list",
		Content: "- Coffee\n- Oat milk\n- Bread",
	},
}
