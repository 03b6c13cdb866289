package activitywatch

import (
	"net/url"
	"strings"

	"github.com/0xEljh/timesync/internal/model"
)

// excludedApps are system processes and idle indicators that never count as
// activity (lock screens, screensavers, shell chrome).
var excludedApps = map[string]bool{
	// macOS
	"loginwindow":       true,
	"screensaverengine": true,
	"screeninactivity":  true,
	// Windows
	"explorer":            true,
	"searchhost":          true,
	"shellexperiencehost": true,
	"lockapp":             true,
	"systemsettings":      true,
}

// terminalApps need title inspection to determine the actual tool in use.
var terminalApps = map[string]bool{
	"kitty": true, "terminal": true, "iterm2": true, "alacritty": true,
	"warp": true, "hyper": true, "wezterm": true, "gnome-terminal": true,
	"konsole": true, "xterm": true,
	"windowsterminal": true, "powershell": true, "pwsh": true, "cmd": true,
	"conhost": true, "windows terminal": true,
}

// codingApps are IDEs, editors and dev tools, keyed by normalized app name
// with the display name used in breakdowns.
var codingApps = map[string]string{
	"code":            "VS Code",
	"vscode":          "VS Code",
	"code - insiders": "VS Code",
	"windsurf":        "Windsurf",
	"cursor":          "Cursor",
	"vim":             "Vim",
	"nvim":            "Neovim",
	"neovim":          "Neovim",
	"emacs":           "Emacs",
	"xcode":           "Xcode",
	"android studio":  "Android Studio",
	"docker":          "Docker",
	"postman":         "Postman",
	"insomnia":        "Insomnia",
	"dbeaver":         "DBeaver",
	"tableplus":       "TablePlus",
	"pgadmin":         "pgAdmin",
}

// planningApps are note-taking and thinking tools.
var planningApps = map[string]bool{
	"notion": true, "logseq": true, "obsidian": true, "roam": true,
	"craft": true, "bear": true, "apple notes": true, "notes": true,
	"evernote": true, "onenote": true, "remnote": true, "anytype": true,
	"capacities": true, "miro": true, "whimsical": true, "excalidraw": true,
	"tldraw": true, "figjam": true,
}

// aiChatApps are desktop AI assistant apps, with display names.
var aiChatApps = map[string]string{
	"claude":  "Claude",
	"chatgpt": "ChatGPT",
}

// terminalToolPattern maps a window-title substring to the tool it indicates.
// Order matters: more specific patterns come first, so this is a slice.
type terminalToolPattern struct {
	substr string
	tool   string
}

var terminalToolPatterns = []terminalToolPattern{
	// Claude Code TUI spinners and modified indicators.
	{"✳ ", "Claude Code"},
	{"⠐ ", "Claude Code"},
	{"⠂ ", "Claude Code"},
	{"claude code", "Claude Code"},
	{"opencode", "OpenCode"},
	{"oc |", "OpenCode"},
	{"oc:", "OpenCode"},
	{"| opencode", "OpenCode"},
	{"nvim", "Neovim"},
	{"neovim", "Neovim"},
	{"vim", "Vim"},
	{"hx ", "Helix"},
	{"helix", "Helix"},
	{"lazygit", "LazyGit"},
	{"lazydocker", "LazyDocker"},
	{"htop", "htop"},
	{"btop", "btop"},
	{"aider", "Aider"},
	{"gemini-cli", "Gemini CLI"},
	{"goose", "Goose"},
	{"ssh ", "SSH"},
	{"kitten ssh", "SSH"},
	{"[ssh:", "SSH"},
}

// codingSites are domains whose browsing time counts as dev tooling.
var codingSites = []string{
	"github.com", "gitlab.com", "bitbucket.org",
	"stackoverflow.com", "stackexchange.com",
	"docs.python.org", "developer.mozilla.org", "devdocs.io",
	"npmjs.com", "pypi.org", "crates.io",
	"replit.com", "codepen.io", "codesandbox.io", "jsfiddle.net",
	"aws.amazon.com", "dash.cloudflare.com",
	"vercel.com", "netlify.com", "railway.app", "render.com",
	"huggingface.co", "colab.research.google.com",
}

// aiChatSites maps AI chat domains to display names.
var aiChatSites = []struct {
	domain string
	name   string
}{
	{"chatgpt.com", "ChatGPT"},
	{"chat.openai.com", "ChatGPT"},
	{"claude.ai", "Claude"},
	{"gemini.google.com", "Gemini"},
	{"bard.google.com", "Gemini"},
	{"aistudio.google.com", "AI Studio"},
	{"grok.com", "Grok"},
	{"perplexity.ai", "Perplexity"},
	{"t3.chat", "T3"},
	{"poe.com", "Poe"},
	{"phind.com", "Phind"},
	{"chat.mistral.ai", "Mistral"},
	{"copilot.microsoft.com", "Copilot"},
}

// NormalizeApp lowercases an app name and strips the Windows .exe suffix so
// classification tables work across platforms.
func NormalizeApp(app string) string {
	app = strings.ToLower(app)
	return strings.TrimSuffix(app, ".exe")
}

// DetectTerminalTool inspects a terminal window title and returns the coding
// tool it indicates, or "" when none matches.
func DetectTerminalTool(title string) string {
	lower := strings.ToLower(title)
	for _, p := range terminalToolPatterns {
		if strings.Contains(lower, p.substr) {
			return p.tool
		}
	}
	return ""
}

// ClassifyWindow assigns a window event to a category with a breakdown label.
// The second return is false for excluded system apps.
func ClassifyWindow(app, title string) (model.Category, string, bool) {
	norm := NormalizeApp(app)
	if norm == "" || excludedApps[norm] {
		return "", "", false
	}

	if terminalApps[norm] {
		if tool := DetectTerminalTool(title); tool != "" {
			return model.CategoryDevTools, tool, true
		}
		return model.CategoryDevTools, "Terminal/Shell", true
	}
	if display, ok := codingApps[norm]; ok {
		return model.CategoryDevTools, display, true
	}
	if name, ok := aiChatApps[norm]; ok {
		return model.CategoryAIChat, name, true
	}
	if planningApps[norm] {
		return model.CategoryPlanning, titleCase(norm), true
	}
	return model.CategoryScreen, norm, true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ClassifyWeb assigns a web event to a category by its URL's domain.
// The second return is false for events with no parseable domain.
func ClassifyWeb(rawURL string) (model.Category, string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	domain := strings.ToLower(u.Host)

	for _, site := range aiChatSites {
		if domain == site.domain || strings.HasSuffix(domain, "."+site.domain) {
			return model.CategoryAIChat, site.name, true
		}
	}
	if domain == "notion.so" || strings.HasSuffix(domain, ".notion.so") {
		return model.CategoryPlanning, "Notion", true
	}
	for _, site := range codingSites {
		if domain == site || strings.HasSuffix(domain, "."+site) {
			return model.CategoryDevTools, site, true
		}
	}
	return model.CategoryScreen, domain, true
}
