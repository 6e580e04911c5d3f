/*
  Ti in Go: the command-line driver.

  Usage: ti [file ...] [-]
  Each file is evaluated in one global environment; "-" or no
  argument at all begins the REPL.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nukata/ti-in-go/ti"
	"github.com/peterh/liner"
)

const (
	historyFile = ".ti_history"
	promptMain  = "ti> "
	promptCont  = "...  "
)

// Read-Eval-Print Loop of the interpreter
func ReadEvalPrintLoop(env *ti.Env) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return complete(env, line)
	})

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			break
		}
		code := strings.TrimSpace(src)
		if code == "" {
			continue
		}
		if code == ":quit" {
			break
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		x, err := ti.DoString(src, env)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if x != ti.Void {
			fmt.Println(ti.ToString(x))
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
}

// readInput reads lines until they make a complete input.
// It returns false at the end of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true // Ctrl-C discards the current input.
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if _, err := ti.Read(src); ti.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// complete returns the candidate lines which complete the last word
// of line with a bound symbol or a keyword.
func complete(env *ti.Env, line string) []string {
	i := strings.LastIndexAny(line, " \t\n()'") + 1
	head, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	names := make(map[string]bool)
	for _, sym := range env.Symbols() {
		names[sym.Name] = true
	}
	for _, sym := range ti.Keywords() {
		names[sym.Name] = true
	}
	result := make([]string, 0, 8)
	for name := range names {
		if strings.HasPrefix(name, word) {
			result = append(result, head+name)
		}
	}
	sort.Strings(result)
	return result
}

// Main runs each element of args as a name of Ti script file.
// It ignores args[0].
// If it does not have args[1] or some element is "-", it begins REPL.
func Main(args []string) int {
	env := ti.MakeGlobalEnv()
	if len(args) < 2 {
		args = []string{args[0], "-"}
	}
	var result ti.Any = ti.Void
	for i, fileName := range args {
		if i == 0 {
			continue
		} else if fileName == "-" {
			ReadEvalPrintLoop(env)
			fmt.Println("Goodbye")
			result = ti.Void
		} else {
			var err error
			result, err = ti.DoFile(fileName, env)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
	}
	if result != ti.Void {
		fmt.Println(ti.ToString(result))
	}
	return 0
}

func main() {
	os.Exit(Main(os.Args))
}
