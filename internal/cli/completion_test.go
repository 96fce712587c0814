package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteGraphFile(t *testing.T) {
	exts, directive := completeGraphFile(nil, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("directive = %v, want ShellCompDirectiveFilterFileExt", directive)
	}
	for _, want := range []string{"json", "toml", "yaml", "yml", "hcl"} {
		if !slices.Contains(exts, want) {
			t.Errorf("completions %v missing %q", exts, want)
		}
	}

	exts, directive = completeGraphFile(nil, []string{"g.json"}, "")
	if len(exts) != 0 || directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument completions = %v, %v; want none", exts, directive)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion %s output does not mention %s", shell, appName)
			}
		})
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should be rejected")
	}
}
