package signature

// Key identifies a built-in function by the name of the object it hangs off
// and its member name. Free functions use the owner "globalThis".
type Key struct {
	Owner  string
	Member string
}

// GlobalOwner is the owner name for functions called without a receiver.
const GlobalOwner = "globalThis"

// NativeTable maps built-in functions to their documented parameters.
type NativeTable map[Key]Tokens

// Lookup returns the tokens for the first owner that has member.
func (t NativeTable) Lookup(member string, owners ...string) (Tokens, bool) {
	for _, owner := range owners {
		if owner == "" {
			continue
		}
		if tokens, ok := t[Key{Owner: owner, Member: member}]; ok {
			return tokens, true
		}
	}
	return nil, false
}

// Builtins returns the table of common JavaScript and Node.js built-ins.
// Constructor and static members share an owner with prototype members of
// the same class name; the two sets do not collide in practice.
func Builtins() NativeTable {
	t := NativeTable{}
	add := func(owner string, entries map[string]Tokens) {
		for member, tokens := range entries {
			t[Key{Owner: owner, Member: member}] = tokens
		}
	}

	add(GlobalOwner, map[string]Tokens{
		"parseInt":           {"string", "?radix"},
		"parseFloat":         {"string"},
		"isNaN":              {"value"},
		"isFinite":           {"value"},
		"encodeURI":          {"uri"},
		"decodeURI":          {"encodedURI"},
		"encodeURIComponent": {"uriComponent"},
		"decodeURIComponent": {"encodedURIComponent"},
		"eval":               {"script"},
		"setTimeout":         {"callback", "?delay", "...args"},
		"setInterval":        {"callback", "?delay", "...args"},
		"setImmediate":       {"callback", "...args"},
		"clearTimeout":       {"?timeout"},
		"clearInterval":      {"?interval"},
		"clearImmediate":     {"?immediate"},
		"queueMicrotask":     {"callback"},
		"structuredClone":    {"value", "?options"},
		"require":            {"id"},
		"fetch":              {"resource", "?options"},
		"atob":               {"data"},
		"btoa":               {"data"},
		"Array":              {"...items"},
		"Object":             {"?value"},
		"String":             {"?value"},
		"Number":             {"?value"},
		"Boolean":            {"?value"},
		"Symbol":             {"?description"},
		"BigInt":             {"value"},
		"Date":               {"...args"},
		"RegExp":             {"pattern", "?flags"},
		"Error":              {"?message", "?options"},
		"TypeError":          {"?message", "?options"},
		"RangeError":         {"?message", "?options"},
		"Map":                {"?iterable"},
		"Set":                {"?iterable"},
		"WeakMap":            {"?iterable"},
		"WeakSet":            {"?iterable"},
		"WeakRef":            {"target"},
		"Promise":            {"executor"},
		"Proxy":              {"target", "handler"},
		"URL":                {"url", "?base"},
		"ArrayBuffer":        {"length", "?options"},
		"Uint8Array":         {"...args"},
	})

	math := map[string]Tokens{
		"atan2":  {"y", "x"},
		"pow":    {"base", "exponent"},
		"imul":   {"a", "b"},
		"max":    {"...values"},
		"min":    {"...values"},
		"hypot":  {"...values"},
		"random": {},
	}
	for _, fn := range []string{
		"abs", "acos", "acosh", "asin", "asinh", "atan", "atanh", "cbrt", "ceil",
		"clz32", "cos", "cosh", "exp", "expm1", "floor", "fround", "log", "log10",
		"log1p", "log2", "round", "sign", "sin", "sinh", "sqrt", "tan", "tanh", "trunc",
	} {
		math[fn] = Tokens{"x"}
	}
	add("Math", math)

	add("JSON", map[string]Tokens{
		"parse":     {"text", "?reviver"},
		"stringify": {"value", "?replacer", "?space"},
	})

	add("Object", map[string]Tokens{
		"keys":                      {"obj"},
		"values":                    {"obj"},
		"entries":                   {"obj"},
		"assign":                    {"target", "...sources"},
		"create":                    {"proto", "?propertiesObject"},
		"defineProperty":            {"obj", "prop", "descriptor"},
		"defineProperties":          {"obj", "props"},
		"freeze":                    {"obj"},
		"isFrozen":                  {"obj"},
		"seal":                      {"obj"},
		"isSealed":                  {"obj"},
		"preventExtensions":         {"obj"},
		"isExtensible":              {"obj"},
		"getPrototypeOf":            {"obj"},
		"setPrototypeOf":            {"obj", "prototype"},
		"getOwnPropertyNames":       {"obj"},
		"getOwnPropertySymbols":     {"obj"},
		"getOwnPropertyDescriptor":  {"obj", "prop"},
		"getOwnPropertyDescriptors": {"obj"},
		"fromEntries":               {"iterable"},
		"groupBy":                   {"items", "callbackFn"},
		"is":                        {"value1", "value2"},
		"hasOwn":                    {"obj", "prop"},
		"hasOwnProperty":            {"prop"},
		"isPrototypeOf":             {"object"},
		"propertyIsEnumerable":      {"prop"},
		"toString":                  {},
		"valueOf":                   {},
	})

	callback := Tokens{"callbackFn", "?thisArg"}
	add("Array", map[string]Tokens{
		"from":          {"arrayLike", "?mapFn", "?thisArg"},
		"of":            {"...elements"},
		"isArray":       {"value"},
		"push":          {"...items"},
		"pop":           {},
		"shift":         {},
		"unshift":       {"...items"},
		"slice":         {"?start", "?end"},
		"splice":        {"start", "?deleteCount", "...items"},
		"toSpliced":     {"start", "?deleteCount", "...items"},
		"concat":        {"...values"},
		"join":          {"?separator"},
		"indexOf":       {"searchElement", "?fromIndex"},
		"lastIndexOf":   {"searchElement", "?fromIndex"},
		"includes":      {"searchElement", "?fromIndex"},
		"find":          callback,
		"findIndex":     callback,
		"findLast":      callback,
		"findLastIndex": callback,
		"filter":        callback,
		"map":           callback,
		"forEach":       callback,
		"some":          callback,
		"every":         callback,
		"flatMap":       callback,
		"reduce":        {"callbackFn", "?initialValue"},
		"reduceRight":   {"callbackFn", "?initialValue"},
		"sort":          {"?compareFn"},
		"toSorted":      {"?compareFn"},
		"reverse":       {},
		"toReversed":    {},
		"fill":          {"value", "?start", "?end"},
		"flat":          {"?depth"},
		"at":            {"index"},
		"with":          {"index", "value"},
		"keys":          {},
		"values":        {},
		"entries":       {},
		"copyWithin":    {"target", "start", "?end"},
	})

	add("String", map[string]Tokens{
		"fromCharCode":  {"...codes"},
		"fromCodePoint": {"...codePoints"},
		"raw":           {"strings", "...substitutions"},
		"at":            {"index"},
		"charAt":        {"index"},
		"charCodeAt":    {"index"},
		"codePointAt":   {"index"},
		"indexOf":       {"searchString", "?position"},
		"lastIndexOf":   {"searchString", "?position"},
		"includes":      {"searchString", "?position"},
		"startsWith":    {"searchString", "?position"},
		"endsWith":      {"searchString", "?endPosition"},
		"slice":         {"?start", "?end"},
		"substring":     {"start", "?end"},
		"split":         {"?separator", "?limit"},
		"replace":       {"pattern", "replacement"},
		"replaceAll":    {"pattern", "replacement"},
		"match":         {"regexp"},
		"matchAll":      {"regexp"},
		"search":        {"regexp"},
		"concat":        {"...strings"},
		"padStart":      {"targetLength", "?padString"},
		"padEnd":        {"targetLength", "?padString"},
		"repeat":        {"count"},
		"normalize":     {"?form"},
		"localeCompare": {"compareString", "?locales", "?options"},
		"toUpperCase":   {},
		"toLowerCase":   {},
		"trim":          {},
		"trimStart":     {},
		"trimEnd":       {},
	})

	add("Number", map[string]Tokens{
		"isInteger":     {"value"},
		"isSafeInteger": {"value"},
		"isFinite":      {"value"},
		"isNaN":         {"value"},
		"parseFloat":    {"string"},
		"parseInt":      {"string", "?radix"},
		"toFixed":       {"?digits"},
		"toPrecision":   {"?precision"},
		"toExponential": {"?fractionDigits"},
		"toString":      {"?radix"},
	})

	add("Promise", map[string]Tokens{
		"resolve":       {"value"},
		"reject":        {"reason"},
		"all":           {"iterable"},
		"allSettled":    {"iterable"},
		"any":           {"iterable"},
		"race":          {"iterable"},
		"withResolvers": {},
		"then":          {"?onFulfilled", "?onRejected"},
		"catch":         {"onRejected"},
		"finally":       {"onFinally"},
	})

	add("Reflect", map[string]Tokens{
		"apply":                    {"target", "thisArgument", "argumentsList"},
		"construct":                {"target", "argumentsList", "?newTarget"},
		"defineProperty":           {"target", "propertyKey", "attributes"},
		"deleteProperty":           {"target", "propertyKey"},
		"get":                      {"target", "propertyKey", "?receiver"},
		"getOwnPropertyDescriptor": {"target", "propertyKey"},
		"getPrototypeOf":           {"target"},
		"has":                      {"target", "propertyKey"},
		"isExtensible":             {"target"},
		"ownKeys":                  {"target"},
		"preventExtensions":        {"target"},
		"set":                      {"target", "propertyKey", "value", "?receiver"},
		"setPrototypeOf":           {"target", "prototype"},
	})

	add("console", map[string]Tokens{
		"log":        {"...data"},
		"info":       {"...data"},
		"warn":       {"...data"},
		"error":      {"...data"},
		"debug":      {"...data"},
		"trace":      {"...data"},
		"table":      {"tabularData", "?properties"},
		"dir":        {"item", "?options"},
		"time":       {"?label"},
		"timeEnd":    {"?label"},
		"timeLog":    {"?label", "...data"},
		"count":      {"?label"},
		"countReset": {"?label"},
		"group":      {"...label"},
		"groupEnd":   {},
		"assert":     {"?condition", "...data"},
	})

	add("Map", map[string]Tokens{
		"groupBy": {"items", "callbackFn"},
		"get":     {"key"},
		"set":     {"key", "value"},
		"has":     {"key"},
		"delete":  {"key"},
		"clear":   {},
		"forEach": callback,
		"keys":    {},
		"values":  {},
		"entries": {},
	})

	add("Set", map[string]Tokens{
		"add":     {"value"},
		"has":     {"value"},
		"delete":  {"value"},
		"clear":   {},
		"forEach": callback,
		"keys":    {},
		"values":  {},
		"entries": {},
	})

	add("WeakMap", map[string]Tokens{
		"get":    {"key"},
		"set":    {"key", "value"},
		"has":    {"key"},
		"delete": {"key"},
	})

	add("Date", map[string]Tokens{
		"now":                {},
		"parse":              {"dateString"},
		"UTC":                {"year", "?monthIndex", "?day", "?hours", "?minutes", "?seconds", "?ms"},
		"getTime":            {},
		"setTime":            {"time"},
		"toISOString":        {},
		"toJSON":             {},
		"toLocaleString":     {"?locales", "?options"},
		"toLocaleDateString": {"?locales", "?options"},
		"toLocaleTimeString": {"?locales", "?options"},
		"setFullYear":        {"year", "?month", "?date"},
		"setMonth":           {"month", "?date"},
		"setDate":            {"date"},
		"setHours":           {"hours", "?minutes", "?seconds", "?ms"},
	})

	add("RegExp", map[string]Tokens{
		"test": {"string"},
		"exec": {"string"},
	})

	add("Function", map[string]Tokens{
		"call":  {"thisArg", "...args"},
		"apply": {"thisArg", "?argsArray"},
		"bind":  {"thisArg", "...args"},
	})

	return t
}
