// Package loader reads an uploaded question file into questions. Plain text
// goes through the tolerant parser; a .lua file runs in a sandboxed VM that
// declares questions with constructors. The Lua VM is discarded after
// loading.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/quizshot/engine/parser"
	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

// ScriptTimeout bounds how long a Lua bank may run.
const ScriptTimeout = 5 * time.Second

// collector accumulates question tables during script execution.
type collector struct {
	questions []rawQuestion
}

func (c *collector) add(kind types.Kind, tbl *lua.LTable) {
	c.questions = append(c.questions, rawQuestion{
		kind:  kind,
		table: tbl,
		order: len(c.questions) + 1,
	})
}

// Load reads the file at path and returns its questions in source order.
// A text file with no recognizable questions yields an empty slice and no
// error. Unreadable files return NotFound or PermissionDenied; files that
// are not UTF-8 text, and Lua banks that fail to run or validate, return
// MalformedContent.
func Load(path string) ([]types.Question, error) {
	if IsScript(path) {
		return LoadScript(context.Background(), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FromFS(err, "reading "+path)
	}
	if !utf8.Valid(data) {
		return nil, errors.MalformedContentf("%s is not UTF-8 text", filepath.Base(path))
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	return parser.Parse(text), nil
}

// IsScript reports whether path names a Lua question bank.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lua")
}

// LoadScript executes a Lua question bank, compiles the declared questions
// and validates them. The script is stopped when ctx is done or after
// ScriptTimeout.
func LoadScript(ctx context.Context, path string) ([]types.Question, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FromFS(err, "reading "+path)
	}

	ctx, cancel := context.WithTimeout(ctx, ScriptTimeout)
	defer cancel()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	if err := L.DoString(string(src)); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeMalformedContent,
			"executing "+filepath.Base(path))
	}

	qs, err := compile(coll)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeMalformedContent,
			"compiling "+filepath.Base(path))
	}
	if err := validate(qs); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeMalformedContent,
			"validating "+filepath.Base(path))
	}
	return qs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the script.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Banks must load the same way every time.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("random", lua.LNil)
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
