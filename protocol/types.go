package protocol

import (
	"encoding/json"
	"time"
)

// ValueType is the type tag of a remote value.
type ValueType string

// Type tags reported by the target process.
const (
	TypeUndefined ValueType = "undefined"
	TypeObject    ValueType = "object"
	TypeFunction  ValueType = "function"
	TypeString    ValueType = "string"
	TypeNumber    ValueType = "number"
	TypeBoolean   ValueType = "boolean"
	TypeSymbol    ValueType = "symbol"
	TypeBigInt    ValueType = "bigint"
)

// SubtypeNull is the subtype the target reports for the null value.
const SubtypeNull = "null"

// RemoteValue is a handle to a value living inside the target process,
// together with the descriptive data the target sent along with it.
type RemoteValue struct {
	// Handle identifies the remote object. Empty for primitives.
	Handle string `json:"objectId,omitempty"`

	// Type is the type tag of the value.
	Type ValueType `json:"type"`

	// Subtype refines object types (null, array, error, promise, map, ...).
	Subtype string `json:"subtype,omitempty"`

	// ClassName is the constructor name for object values.
	ClassName string `json:"className,omitempty"`

	// Description is the textual description produced by the target.
	// For functions it is the function source text.
	Description string `json:"description,omitempty"`

	// Preview is an optional shallow preview of the value's properties.
	Preview *ObjectPreview `json:"preview,omitempty"`

	// Value is the raw wire encoding of a primitive value. It is passed back
	// to the target verbatim and never decoded by the engine.
	Value json.RawMessage `json:"value,omitempty"`

	// UnserializableValue carries primitives that JSON cannot encode
	// (NaN, -0, Infinity, bigint literals).
	UnserializableValue string `json:"unserializableValue,omitempty"`
}

// IsNullish reports whether the value is undefined or null.
func (v RemoteValue) IsNullish() bool {
	return v.Type == TypeUndefined || (v.Type == TypeObject && v.Subtype == SubtypeNull)
}

// HasHandle reports whether the value refers to a remote object.
func (v RemoteValue) HasHandle() bool {
	return v.Handle != ""
}

// ObjectPreview is a shallow, ordered summary of an object's properties.
type ObjectPreview struct {
	Type        ValueType         `json:"type"`
	Subtype     string            `json:"subtype,omitempty"`
	Description string            `json:"description,omitempty"`
	Overflow    bool              `json:"overflow"`
	Properties  []PropertyPreview `json:"properties"`
	Entries     []EntryPreview    `json:"entries,omitempty"`
}

// PropertyPreview summarizes a single property inside an ObjectPreview.
type PropertyPreview struct {
	Name         string         `json:"name"`
	Type         ValueType      `json:"type"`
	Subtype      string         `json:"subtype,omitempty"`
	Value        string         `json:"value,omitempty"`
	ValuePreview *ObjectPreview `json:"valuePreview,omitempty"`
}

// EntryPreview summarizes a map or set entry inside an ObjectPreview.
type EntryPreview struct {
	Key   *ObjectPreview `json:"key,omitempty"`
	Value ObjectPreview  `json:"value"`
}

// EvaluationRequest specifies one evaluation in the target process.
type EvaluationRequest struct {
	// Expression is the source text to evaluate.
	Expression string

	// GeneratePreview asks the target to attach previews to object results.
	GeneratePreview bool

	// AwaitPromise resolves a promise result before replying.
	AwaitPromise bool

	// ThrowOnSideEffect makes the target abort evaluation on any observable
	// side effect.
	ThrowOnSideEffect bool

	// Timeout bounds execution time inside the target. Zero means no bound.
	Timeout time.Duration

	// ContextID selects the execution context. Zero means the default context.
	ContextID int

	// ReplMode enables REPL semantics such as let redeclaration.
	ReplMode bool

	// ObjectGroup names the group remote handles are released with.
	ObjectGroup string

	// Silent suppresses pause-on-exception behavior in the target.
	Silent bool
}

// ExceptionDetails describes an exception thrown inside the target.
type ExceptionDetails struct {
	// Text is the short exception text (e.g. "Uncaught").
	Text string

	// Line and Column locate the throw site, zero-based.
	Line   int
	Column int

	// Exception is the thrown value.
	Exception RemoteValue

	// Stack is the rendered call stack description.
	Stack string
}

// Message returns the most descriptive text available for the exception.
func (d *ExceptionDetails) Message() string {
	if d == nil {
		return ""
	}
	if d.Exception.Description != "" {
		return d.Exception.Description
	}
	if len(d.Exception.Value) > 0 {
		var s string
		if err := json.Unmarshal(d.Exception.Value, &s); err == nil {
			return s
		}
		return string(d.Exception.Value)
	}
	return d.Text
}

// EvaluationResult is either a successful value or an exception.
type EvaluationResult struct {
	// Value is the result when the evaluation completed normally.
	Value RemoteValue

	// Exception is set when the evaluation threw.
	Exception *ExceptionDetails
}

// Threw reports whether the evaluation threw.
func (r EvaluationResult) Threw() bool {
	return r.Exception != nil
}

// PropertiesOptions controls property enumeration.
type PropertiesOptions struct {
	// OwnOnly restricts the listing to own properties.
	OwnOnly bool

	// GeneratePreview attaches previews to object property values.
	GeneratePreview bool
}

// PropertyDescriptor describes one property of a remote object.
type PropertyDescriptor struct {
	// Name is the property key. For symbol keys it is the symbol description.
	Name string

	// IsOwn reports whether the property is defined on the object itself.
	IsOwn bool

	// Symbol reports whether the key is a symbol.
	Symbol bool

	// Enumerable mirrors the property attribute.
	Enumerable bool

	// WasThrown is set when reading the property threw.
	WasThrown bool

	// Value is the property value, when it is a data property.
	Value *RemoteValue
}

// CallArgument passes a value to CallFunctionOn. Exactly one of Handle,
// Value or UnserializableValue should be set; all empty means undefined.
type CallArgument struct {
	Handle              string
	Value               json.RawMessage
	UnserializableValue string
}

// ArgumentFor builds the CallArgument that passes v back to the target.
func ArgumentFor(v RemoteValue) CallArgument {
	switch {
	case v.Handle != "":
		return CallArgument{Handle: v.Handle}
	case v.UnserializableValue != "":
		return CallArgument{UnserializableValue: v.UnserializableValue}
	case v.Type == TypeObject && v.Subtype == SubtypeNull:
		return CallArgument{Value: json.RawMessage("null")}
	default:
		return CallArgument{Value: v.Value}
	}
}

// CallRequest specifies a CallFunctionOn round trip.
type CallRequest struct {
	// Handle is the receiver (this) of the call.
	Handle string

	// FunctionText is the declaration of the function to call.
	FunctionText string

	// Arguments are passed positionally.
	Arguments []CallArgument

	// ContextID selects the execution context when Handle is empty.
	ContextID int

	// AwaitPromise resolves a promise result before replying.
	AwaitPromise bool

	// GeneratePreview asks for a preview of the result.
	GeneratePreview bool

	// Silent suppresses pause-on-exception behavior in the target.
	Silent bool
}
