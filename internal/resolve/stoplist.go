// Package resolve implements the Reference Resolver: import path
// resolution, call target resolution with confidence scoring, and heritage
// edges.
package resolve

// BuiltinStopList is the fixed set of names the call resolver must never
// treat as a user-defined call target. Kept as one flat set: a name here
// is skipped regardless of the file's language.
var BuiltinStopList = buildStopList()

func buildStopList() map[string]bool {
	names := []string{
		// JS/TS globals
		"console", "log", "warn", "error", "info", "debug",
		"setTimeout", "setInterval", "clearTimeout", "clearInterval",
		"parseInt", "parseFloat", "isNaN", "isFinite",
		"encodeURI", "decodeURI", "encodeURIComponent", "decodeURIComponent",
		"JSON", "parse", "stringify",
		"Object", "Array", "String", "Number", "Boolean", "Symbol", "BigInt",
		"Map", "Set", "WeakMap", "WeakSet",
		"Promise", "resolve", "reject", "then", "catch", "finally",
		"Math", "Date", "RegExp", "Error",
		"require", "import", "export",
		"fetch", "Response", "Request",
		// React hooks/primitives
		"useState", "useEffect", "useCallback", "useMemo", "useRef",
		"useContext", "useReducer", "useLayoutEffect", "useImperativeHandle",
		"useDebugValue", "createElement", "createContext", "createRef",
		"forwardRef", "memo", "lazy",
		// collection methods
		"map", "filter", "reduce", "forEach", "find", "findIndex", "some",
		"every", "includes", "indexOf", "slice", "splice", "concat", "join",
		"split", "push", "pop", "shift", "unshift", "sort", "reverse",
		"keys", "values", "entries", "assign", "freeze", "seal",
		"hasOwnProperty", "toString", "valueOf",
		// Python builtins
		"print", "len", "range", "str", "int", "float", "list", "dict",
		"set", "tuple", "open", "read", "write", "close", "append",
		"extend", "update", "super", "type", "isinstance", "issubclass",
		"getattr", "setattr", "hasattr", "enumerate", "zip", "sorted",
		"reversed", "min", "max", "sum", "abs",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsBuiltin reports whether name is in the fixed call-resolver stop-list.
func IsBuiltin(name string) bool {
	return BuiltinStopList[name]
}
