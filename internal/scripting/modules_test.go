package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawler/internal/scripting"
)

func runScript(t testing.TB, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	// Use a unique arena per test to avoid collisions
	arenaID := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadArena(arenaID, dir, 0))
	ret, err := mgr.CallHook(arenaID, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_WritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(logger)
	defer mgr.Close()

	runScript(t, mgr, `
		function do_log()
			engine.log("hello from lua")
		end
	`, "do_log")

	found := false
	for _, e := range logs.All() {
		if e.Level == zap.InfoLevel {
			found = true
			break
		}
	}
	assert.True(t, found, "expected Info log entry")
}

func TestEngineIntensity_NilCallback_ReturnsZero(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function get_it() return engine.intensity() end
	`, "get_it")
	assert.Equal(t, lua.LNumber(0), ret)
}

func TestEngineIntensity_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.Intensity = func() float64 { return 17.5 }
	ret := runScript(t, mgr, `
		function get_it() return engine.intensity() end
	`, "get_it")
	assert.Equal(t, lua.LNumber(17.5), ret)
}

func TestEngineCharacter_NilCallback_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function get_it() return engine.character("uid1") end
	`, "get_it")
	assert.Equal(t, lua.LNil, ret)
}

func TestEngineCharacter_UnknownUID_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCharacter = func(uid string) *scripting.CharacterInfo { return nil }
	ret := runScript(t, mgr, `
		function get_it() return engine.character("unknown") end
	`, "get_it")
	assert.Equal(t, lua.LNil, ret)
}

func TestEngineCharacter_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCharacter = func(uid string) *scripting.CharacterInfo {
		return &scripting.CharacterInfo{
			UID:       uid,
			Name:      "Hero",
			Health:    42,
			MaxHealth: 100,
			Strength:  10,
			Defense:   5,
			Combo:     3,
		}
	}
	ret := runScript(t, mgr, `
		function get_it()
			local c = engine.character("uid1")
			return c.name .. ":" .. c.health .. ":" .. c.combo
		end
	`, "get_it")
	assert.Equal(t, lua.LString("Hero:42:3"), ret)
}

func TestEngineCharacter_TableFields(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCharacter = func(uid string) *scripting.CharacterInfo {
		return &scripting.CharacterInfo{
			UID: uid, Name: "Bruiser", Health: 70, MaxHealth: 70, Strength: 9, Defense: 6,
		}
	}
	ret := runScript(t, mgr, `
		function get_it()
			local c = engine.character("b1")
			if c.uid ~= "b1" then return "bad uid" end
			if c.max_health ~= 70 then return "bad max_health" end
			if c.strength ~= 9 then return "bad strength" end
			if c.defense ~= 6 then return "bad defense" end
			return "ok"
		end
	`, "get_it")
	assert.Equal(t, lua.LString("ok"), ret)
}

func TestProperty_EngineCharacter_HealthRoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr, _ := newTestManager(t)
		health := rapid.Float64Range(0, 1000).Draw(rt, "health")
		mgr.GetCharacter = func(uid string) *scripting.CharacterInfo {
			return &scripting.CharacterInfo{UID: uid, Name: "X", Health: health, MaxHealth: 1000}
		}
		ret := runScript(t, mgr, `
			function get_it() return engine.character("uid1").health end
		`, "get_it")
		n, ok := ret.(lua.LNumber)
		if !ok {
			rt.Fatalf("expected LNumber, got %T", ret)
		}
		if float64(n) != health {
			rt.Fatalf("expected %v, got %v", health, float64(n))
		}
	})
}
