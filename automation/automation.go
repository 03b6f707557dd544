// Package automation drives host parameters from Lua scripts.
//
// A script defines a global function params(t) that receives the block
// start time in seconds and returns a table mapping parameter IDs to values:
//
//	function params(t)
//	  return { wet_level_db = -12 + 6 * math.sin(t), krt = 0.8 }
//	end
package automation

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

const entryPoint = "params"

// ParameterSetter receives automation values. host.Processor satisfies it.
type ParameterSetter interface {
	SetParameter(id string, v float64) error
}

// Script is a loaded automation script. It is not safe for concurrent use.
type Script struct {
	state *lua.LState
	fn    lua.LValue
	keys  []string
}

// Load runs the script at path and looks up its params function.
func Load(path string) (*Script, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load automation %s: %w", path, err)
	}
	return newScript(L)
}

// LoadString is Load for in-memory source.
func LoadString(src string) (*Script, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("load automation: %w", err)
	}
	return newScript(L)
}

func newScript(L *lua.LState) (*Script, error) {
	fn := L.GetGlobal(entryPoint)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("automation script does not define %s(t)", entryPoint)
	}
	return &Script{state: L, fn: fn}, nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// Values evaluates params(t).
func (s *Script) Values(t float64) (map[string]float64, error) {
	if s.state == nil {
		return nil, fmt.Errorf("automation script is closed")
	}
	L := s.state
	if err := L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		return nil, fmt.Errorf("%s(%g): %w", entryPoint, t, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if ret == lua.LNil {
		return map[string]float64{}, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s(%g) returned %s, want table", entryPoint, t, ret.Type())
	}

	out := make(map[string]float64)
	var convErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if convErr != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("%s(%g): non-string key %v", entryPoint, t, k)
			return
		}
		num, ok := v.(lua.LNumber)
		if !ok {
			convErr = fmt.Errorf("%s(%g): %s is %s, want number", entryPoint, t, key, v.Type())
			return
		}
		out[string(key)] = float64(num)
	})
	if convErr != nil {
		return nil, convErr
	}
	return out, nil
}

// Apply evaluates params(t) and forwards the values to dst in key order.
func (s *Script) Apply(t float64, dst ParameterSetter) error {
	values, err := s.Values(t)
	if err != nil {
		return err
	}
	s.keys = s.keys[:0]
	for k := range values {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)
	for _, k := range s.keys {
		if err := dst.SetParameter(k, values[k]); err != nil {
			return fmt.Errorf("automation at %.3fs: %w", t, err)
		}
	}
	return nil
}
