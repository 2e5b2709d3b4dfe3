package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua functions into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L with log, intensity, and
// character functions.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "log", L.NewFunction(func(ls *lua.LState) int {
		msg := ls.CheckString(1)
		m.logger.Info("script", zap.String("message", msg))
		return 0
	}))

	L.SetField(engine, "intensity", L.NewFunction(func(ls *lua.LState) int {
		if m.Intensity == nil {
			ls.Push(lua.LNumber(0))
			return 1
		}
		ls.Push(lua.LNumber(m.Intensity()))
		return 1
	}))

	L.SetField(engine, "character", L.NewFunction(func(ls *lua.LState) int {
		uid := ls.CheckString(1)
		if m.GetCharacter == nil {
			ls.Push(lua.LNil)
			return 1
		}
		info := m.GetCharacter(uid)
		if info == nil {
			ls.Push(lua.LNil)
			return 1
		}
		t := ls.NewTable()
		ls.SetField(t, "uid", lua.LString(info.UID))
		ls.SetField(t, "name", lua.LString(info.Name))
		ls.SetField(t, "health", lua.LNumber(info.Health))
		ls.SetField(t, "max_health", lua.LNumber(info.MaxHealth))
		ls.SetField(t, "strength", lua.LNumber(info.Strength))
		ls.SetField(t, "defense", lua.LNumber(info.Defense))
		ls.SetField(t, "combo", lua.LNumber(info.Combo))
		ls.Push(t)
		return 1
	}))

	L.SetGlobal("engine", engine)
}
