package activitywatch_test

import (
	"testing"

	"github.com/0xEljh/timesync/internal/activitywatch"
	"github.com/0xEljh/timesync/internal/model"
)

func TestNormalizeApp(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Code", "code"},
		{"WindowsTerminal.exe", "windowsterminal"},
		{"KITTY", "kitty"},
		{"notepad++", "notepad++"},
	}
	for _, tt := range tests {
		if got := activitywatch.NormalizeApp(tt.input); got != tt.want {
			t.Errorf("NormalizeApp(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDetectTerminalTool(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"✳ fixing the parser — kitty", "Claude Code"},
		{"nvim ~/dotfiles/init.lua", "Neovim"},
		{"lazygit · dotfiles", "LazyGit"},
		{"Config | OpenCode", "OpenCode"},
		{"ssh contabo", "SSH"},
		{"zsh — ~/projects", ""},
	}
	for _, tt := range tests {
		if got := activitywatch.DetectTerminalTool(tt.title); got != tt.want {
			t.Errorf("DetectTerminalTool(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestClassifyWindow(t *testing.T) {
	tests := []struct {
		name      string
		app       string
		title     string
		wantCat   model.Category
		wantLabel string
		wantOK    bool
	}{
		{"terminal with tool", "kitty", "nvim main.go", model.CategoryDevTools, "Neovim", true},
		{"terminal plain shell", "alacritty", "zsh", model.CategoryDevTools, "Terminal/Shell", true},
		{"ide", "Code", "main.go — timesync", model.CategoryDevTools, "VS Code", true},
		{"windows ide", "Cursor.exe", "main.go", model.CategoryDevTools, "Cursor", true},
		{"planning app", "obsidian", "daily note", model.CategoryPlanning, "Obsidian", true},
		{"ai desktop app", "Claude", "chat", model.CategoryAIChat, "Claude", true},
		{"generic app", "Spotify", "lo-fi beats", model.CategoryScreen, "spotify", true},
		{"lock screen excluded", "loginwindow", "", "", "", false},
		{"empty app excluded", "", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, label, ok := activitywatch.ClassifyWindow(tt.app, tt.title)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cat != tt.wantCat || label != tt.wantLabel {
				t.Errorf("ClassifyWindow = (%s, %q), want (%s, %q)", cat, label, tt.wantCat, tt.wantLabel)
			}
		})
	}
}

func TestClassifyWeb(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantCat   model.Category
		wantLabel string
		wantOK    bool
	}{
		{"ai chat", "https://claude.ai/chat/abc", model.CategoryAIChat, "Claude", true},
		{"ai chat subdomain", "https://www.perplexity.ai/search", model.CategoryAIChat, "Perplexity", true},
		{"coding site", "https://github.com/0xEljh/dotfiles", model.CategoryDevTools, "github.com", true},
		{"notion web", "https://www.notion.so/workspace", model.CategoryPlanning, "Notion", true},
		{"plain browsing", "https://news.ycombinator.com/item?id=1", model.CategoryScreen, "news.ycombinator.com", true},
		{"no domain", "about:blank", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, label, ok := activitywatch.ClassifyWeb(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cat != tt.wantCat || label != tt.wantLabel {
				t.Errorf("ClassifyWeb = (%s, %q), want (%s, %q)", cat, label, tt.wantCat, tt.wantLabel)
			}
		})
	}
}
