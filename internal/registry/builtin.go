package registry

// builtinCategories returns the bundled category definitions used to seed a
// fresh per-user registry file.
func builtinCategories() []Category {
	return []Category{
		{
			ID:          "devTools",
			Name:        "Developer Tools",
			Description: "Code editors and IDEs",
			Apps:        []string{"Code", "Cursor", "Zed", "IntelliJ", "GoLand", "Neovim", "Emacs"},
		},
		{
			ID:          "terminal",
			Name:        "Terminals",
			Description: "Terminal emulators",
			Apps:        []string{"Alacritty", "kitty", "foot", "WezTerm", "Konsole"},
		},
		{
			ID:          "browsers",
			Name:        "Browsers",
			Description: "Web browsers",
			Apps:        []string{"Firefox", "Chromium", "Chrome", "Brave"},
		},
		{
			ID:          "communication",
			Name:        "Communication",
			Description: "Chat and mail clients",
			Apps:        []string{"Slack", "Discord", "Element", "Thunderbird"},
		},
		{
			ID:          "notes",
			Name:        "Notes",
			Description: "Note-taking apps",
			Apps:        []string{"Obsidian", "Logseq", "Joplin"},
		},
	}
}

// Builtin returns the bundled registry.
func Builtin() Registry {
	cats := builtinCategories()
	byID := make(map[string]Category, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = cat
	}
	return Registry{ordered: cats, byID: byID}
}
