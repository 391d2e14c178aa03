//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"pyindent/config"
	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/adapter/cache"
	"pyindent/internal/domain"
	"pyindent/internal/usecase"
)

var (
	parser  *cache.CachedParser
	newline *usecase.NewlineUseCase
)

func init() {
	parser = cache.NewCachedParser(analyzer.NewParser(), cache.NewParseCache(32, 0))
	newline = usecase.NewNewlineUseCase(parser)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("pyindentParse", js.FuncOf(parseText))
	js.Global().Set("pyindentNext", js.FuncOf(nextLevel))
	js.Global().Set("pyindentNewline", js.FuncOf(planNewline))
	js.Global().Set("pyindentLint", js.FuncOf(lintText))

	<-c
}

func splitText(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func parseText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: pyindentParse(text)")
	}
	return makeResult(parser.Parse(splitText(args[0].String())))
}

func nextLevel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: pyindentNext(text, [tabSize])")
	}

	tabSize := 4
	if len(args) > 1 {
		tabSize = args[1].Int()
	}
	if tabSize <= 0 {
		return makeError(usecase.ErrInvalidTabSize.Error())
	}

	level, res := usecase.IndentationInfo(parser, splitText(args[0].String()), tabSize)
	return makeResult(map[string]interface{}{
		"level":  max(level, 0),
		"result": res,
	})
}

func planNewline(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeError("usage: pyindentNewline(text, row, col, [tabSize])")
	}

	tabSize := 4
	if len(args) > 3 {
		tabSize = args[3].Int()
	}

	edit, err := newline.Plan(usecase.NewlineRequest{
		Lines:   splitText(args[0].String()),
		Cursor:  domain.Position{Row: args[1].Int(), Col: args[2].Int()},
		TabSize: tabSize,
	})
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(edit)
}

func lintText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: pyindentLint(text, [tabSize])")
	}

	opts := usecase.LintOptions{
		TabSize: 4,
		Rules:   []string{config.RuleContinuation, config.RuleOverIndent},
	}
	if len(args) > 1 {
		opts.TabSize = args[1].Int()
	}
	if opts.TabSize <= 0 {
		return makeError(usecase.ErrInvalidTabSize.Error())
	}

	return makeResult(map[string]interface{}{
		"findings": usecase.CheckLines(splitText(args[0].String()), opts),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
