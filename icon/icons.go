package icon

// Icon identifies a symbol of the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Progress
	Search
	Link
	Mark
	Download
	Chapter
	Archive
	Skip
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "✗",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(￣ー￣)",
		squares: "🟦",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(°ロ°)",
		squares: "🟪",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "->",
		kaomoji: "(っ˘ω˘ς)",
		squares: "🟫",
	},
	Mark: {
		emoji:   "📌",
		nerd:    "",
		plain:   "*",
		kaomoji: "(˘▾˘)",
		squares: "⬛",
	},
	Download: {
		emoji:   "📥",
		nerd:    "",
		plain:   "v",
		kaomoji: "(ง'̀-'́)ง",
		squares: "🟦",
	},
	Chapter: {
		emoji:   "📖",
		nerd:    "",
		plain:   "#",
		kaomoji: "(・ω・)",
		squares: "⬜",
	},
	Archive: {
		emoji:   "📦",
		nerd:    "",
		plain:   "=",
		kaomoji: "(^_^)b",
		squares: "🟧",
	},
	Skip: {
		emoji:   "⏭️",
		nerd:    "",
		plain:   "-",
		kaomoji: "(¬_¬)",
		squares: "⬜",
	},
}
