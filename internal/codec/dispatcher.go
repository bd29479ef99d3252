package codec

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rtcstack/rtc-token-service/internal/domain"
)

// Arity of the two known builder signatures. The seven argument form carries a privilege
// expiry separate from the token expiry.
const (
	ArityWithPrivilege = 7
	AritySingleExpiry  = 6
)

// Adapter describes one known entry point: a free function when Method is empty, otherwise a
// method on the named type.
type Adapter struct {
	Symbol string
	Method string
	Arity  int
}

// Name is the qualified entry point name used in logs and errors.
func (a Adapter) Name() string {
	if a.Method == "" {
		return fmt.Sprintf("%s/%d", a.Symbol, a.Arity)
	}
	return fmt.Sprintf("%s.%s/%d", a.Symbol, a.Method, a.Arity)
}

// DefaultAdapters returns the known entry points in priority order.
func DefaultAdapters() []Adapter {
	adapters := []Adapter{
		{Symbol: "BuildTokenWithUid", Arity: ArityWithPrivilege},
		{Symbol: "BuildTokenWithUID", Arity: AritySingleExpiry},
		{Symbol: "BuildTokenWithUid", Arity: AritySingleExpiry},
	}
	for _, typeName := range []string{"RtcTokenBuilder2", "RtcTokenBuilder"} {
		adapters = append(adapters,
			Adapter{Symbol: typeName, Method: "BuildTokenWithUid", Arity: ArityWithPrivilege},
			Adapter{Symbol: typeName, Method: "BuildTokenWithUID", Arity: AritySingleExpiry},
			Adapter{Symbol: typeName, Method: "BuildTokenWithUid", Arity: AritySingleExpiry},
		)
	}
	return adapters
}

// EntryPoint is a resolved builder function reduced to the common call shape of Build.
type EntryPoint struct {
	Name  string
	Arity int
	fn    reflect.Value
}

// Dispatcher invokes the first entry point of a Library that matches a known call shape.
type Dispatcher struct {
	lib      Library
	adapters []Adapter
}

// NewDispatcher builds a dispatcher probing lib with the default adapter order.
func NewDispatcher(lib Library) *Dispatcher {
	return &Dispatcher{lib: lib, adapters: DefaultAdapters()}
}

// Resolve probes the library in priority order without invoking anything.
func (d *Dispatcher) Resolve() (*EntryPoint, error) {
	probed := make([]string, 0, len(d.adapters))
	for _, adapter := range d.adapters {
		if entry, ok := adapter.resolve(d.lib); ok {
			return entry, nil
		}
		probed = append(probed, adapter.Name())
	}
	return nil, &DispatchError{Kind: NoCompatibleEntryPoint, Probed: probed}
}

// Dispatch signs a token through the resolved entry point. Both expiries of the seven
// argument form are set to ttl.
func (d *Dispatcher) Dispatch(ctx context.Context, creds domain.Credentials, channel string, uid uint32, role domain.Role, ttl uint32) (string, error) {
	entry, err := d.Resolve()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := entry.Build(creds.AppID, creds.AppCertificate, channel, uid, role, ttl)
	if err != nil {
		return "", &DispatchError{Kind: SigningFailed, EntryPoint: entry.Name, Err: err}
	}
	return token, nil
}

// Build invokes the entry point. Panics raised by the builder are returned as errors.
func (e *EntryPoint) Build(appID, appCertificate, channel string, uid uint32, role domain.Role, ttl uint32) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			token, err = "", fmt.Errorf("builder panicked: %v", r)
		}
	}()

	fnType := e.fn.Type()
	ints := []uint64{uint64(uid), uint64(role), uint64(ttl), uint64(ttl)}[:e.Arity-3]

	args := make([]reflect.Value, 0, e.Arity)
	for i, s := range []string{appID, appCertificate, channel} {
		args = append(args, reflect.ValueOf(s).Convert(fnType.In(i)))
	}
	for i, n := range ints {
		arg, err := integerArg(n, fnType.In(3+i))
		if err != nil {
			return "", err
		}
		args = append(args, arg)
	}

	out := e.fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return "", out[1].Interface().(error)
	}
	return out[0].String(), nil
}

func (a Adapter) resolve(lib Library) (*EntryPoint, bool) {
	sym, ok := lib.Lookup(a.Symbol)
	if !ok {
		return nil, false
	}

	v := reflect.ValueOf(sym)
	var fn reflect.Value
	if a.Method == "" {
		// plugin variables are looked up as pointers
		for v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		fn = v
	} else {
		// keep the last pointer level so pointer receiver methods stay in the method set
		for v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Pointer {
			v = v.Elem()
		}
		fn = v.MethodByName(a.Method)
	}

	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() || !matchesShape(fn.Type(), a.Arity) {
		return nil, false
	}
	return &EntryPoint{Name: a.Name(), Arity: a.Arity, fn: fn}, true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// matchesShape accepts (string, string, string, int...) returning string or (string, error).
// Integer parameters may be any integer kind so a builder's own named types match.
func matchesShape(t reflect.Type, arity int) bool {
	if t.IsVariadic() || t.NumIn() != arity {
		return false
	}
	for i := 0; i < 3; i++ {
		if t.In(i).Kind() != reflect.String {
			return false
		}
	}
	for i := 3; i < arity; i++ {
		if !isInteger(t.In(i).Kind()) {
			return false
		}
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return false
		}
	default:
		return false
	}
	return t.Out(0).Kind() == reflect.String
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func integerArg(n uint64, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("value %d overflows builder parameter type %s", n, t)
		}
		v.SetUint(n)
	default:
		if n > 1<<63-1 || v.OverflowInt(int64(n)) {
			return reflect.Value{}, fmt.Errorf("value %d overflows builder parameter type %s", n, t)
		}
		v.SetInt(int64(n))
	}
	return v, nil
}
