package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/quizshot/types"
)

// registerAPI registers the question constructors and level constants as
// globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerLevels(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Question { text = "...", answers = {...}, correct = 2 }
	L.SetGlobal("Question", L.NewFunction(func(L *lua.LState) int {
		coll.add(types.KindMultipleChoice, L.CheckTable(1))
		return 0
	}))

	// TrueFalse { text = "...", statements = { {"...", true}, ... } }
	L.SetGlobal("TrueFalse", L.NewFunction(func(L *lua.LState) int {
		coll.add(types.KindTrueFalse, L.CheckTable(1))
		return 0
	}))

	// ShortAnswer { text = "...", answer = "..." }
	L.SetGlobal("ShortAnswer", L.NewFunction(func(L *lua.LState) int {
		coll.add(types.KindShortAnswer, L.CheckTable(1))
		return 0
	}))
}

// registerLevels exposes RECALL, COMPREHENSION and APPLICATION so scripts
// need not spell the stored level names.
func registerLevels(L *lua.LState) {
	L.SetGlobal("RECALL", lua.LString(types.LevelRecall))
	L.SetGlobal("COMPREHENSION", lua.LString(types.LevelComprehension))
	L.SetGlobal("APPLICATION", lua.LString(types.LevelApplication))
}
