package cdp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonwraymond/inspectrepl/protocol"
)

type evaluateParams struct {
	Expression        string `json:"expression"`
	ObjectGroup       string `json:"objectGroup,omitempty"`
	Silent            bool   `json:"silent,omitempty"`
	ContextID         int    `json:"contextId,omitempty"`
	GeneratePreview   bool   `json:"generatePreview,omitempty"`
	AwaitPromise      bool   `json:"awaitPromise,omitempty"`
	ThrowOnSideEffect bool   `json:"throwOnSideEffect,omitempty"`
	TimeoutMillis     int64  `json:"timeout,omitempty"`
	ReplMode          bool   `json:"replMode,omitempty"`
}

type evaluateReply struct {
	Result           protocol.RemoteValue `json:"result"`
	ExceptionDetails *exceptionDetails    `json:"exceptionDetails,omitempty"`
}

type exceptionDetails struct {
	ExceptionID  int                   `json:"exceptionId"`
	Text         string                `json:"text"`
	LineNumber   int                   `json:"lineNumber"`
	ColumnNumber int                   `json:"columnNumber"`
	Exception    *protocol.RemoteValue `json:"exception,omitempty"`
	StackTrace   *stackTrace           `json:"stackTrace,omitempty"`
}

type stackTrace struct {
	Description string      `json:"description,omitempty"`
	CallFrames  []callFrame `json:"callFrames"`
}

type callFrame struct {
	FunctionName string `json:"functionName"`
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type getPropertiesParams struct {
	ObjectID        string `json:"objectId"`
	OwnProperties   bool   `json:"ownProperties,omitempty"`
	GeneratePreview bool   `json:"generatePreview,omitempty"`
}

type getPropertiesReply struct {
	Result           []propertyDescriptor `json:"result"`
	ExceptionDetails *exceptionDetails    `json:"exceptionDetails,omitempty"`
}

type propertyDescriptor struct {
	Name       string                `json:"name"`
	Value      *protocol.RemoteValue `json:"value,omitempty"`
	Enumerable bool                  `json:"enumerable"`
	WasThrown  bool                  `json:"wasThrown,omitempty"`
	IsOwn      bool                  `json:"isOwn,omitempty"`
	Symbol     *protocol.RemoteValue `json:"symbol,omitempty"`
}

type callArgument struct {
	Value               json.RawMessage `json:"value,omitempty"`
	UnserializableValue string          `json:"unserializableValue,omitempty"`
	ObjectID            string          `json:"objectId,omitempty"`
}

type callFunctionOnParams struct {
	FunctionDeclaration string         `json:"functionDeclaration"`
	ObjectID            string         `json:"objectId,omitempty"`
	Arguments           []callArgument `json:"arguments,omitempty"`
	Silent              bool           `json:"silent,omitempty"`
	GeneratePreview     bool           `json:"generatePreview,omitempty"`
	AwaitPromise        bool           `json:"awaitPromise,omitempty"`
	ExecutionContextID  int            `json:"executionContextId,omitempty"`
}

type globalLexicalScopeNamesParams struct {
	ExecutionContextID int `json:"executionContextId,omitempty"`
}

type releaseObjectGroupParams struct {
	ObjectGroup string `json:"objectGroup"`
}

type globalLexicalScopeNamesReply struct {
	Names []string `json:"names"`
}

type executionContextCreated struct {
	Context struct {
		ID      int    `json:"id"`
		Origin  string `json:"origin"`
		Name    string `json:"name"`
		AuxData struct {
			IsDefault bool `json:"isDefault"`
		} `json:"auxData"`
	} `json:"context"`
}

type executionContextDestroyed struct {
	ExecutionContextID int `json:"executionContextId"`
}

func buildEvaluateParams(req protocol.EvaluationRequest, contextID int) evaluateParams {
	p := evaluateParams{
		Expression:        req.Expression,
		ObjectGroup:       req.ObjectGroup,
		Silent:            req.Silent,
		ContextID:         contextID,
		GeneratePreview:   req.GeneratePreview,
		AwaitPromise:      req.AwaitPromise,
		ThrowOnSideEffect: req.ThrowOnSideEffect,
		ReplMode:          req.ReplMode,
	}
	if req.Timeout > 0 {
		p.TimeoutMillis = req.Timeout.Milliseconds()
	}
	return p
}

func buildCallArguments(args []protocol.CallArgument) []callArgument {
	if len(args) == 0 {
		return nil
	}
	out := make([]callArgument, len(args))
	for i, a := range args {
		out[i] = callArgument{
			Value:               a.Value,
			UnserializableValue: a.UnserializableValue,
			ObjectID:            a.Handle,
		}
	}
	return out
}

func mapResult(result protocol.RemoteValue, details *exceptionDetails) protocol.EvaluationResult {
	if details == nil {
		return protocol.EvaluationResult{Value: result}
	}
	return protocol.EvaluationResult{Exception: mapException(details)}
}

func mapException(d *exceptionDetails) *protocol.ExceptionDetails {
	out := &protocol.ExceptionDetails{
		Text:   d.Text,
		Line:   d.LineNumber,
		Column: d.ColumnNumber,
	}
	if d.Exception != nil {
		out.Exception = *d.Exception
	} else {
		out.Exception = protocol.RemoteValue{Type: protocol.TypeUndefined}
	}
	out.Stack = renderStack(out.Exception.Description, d.StackTrace)
	return out
}

// renderStack prefers the stack already embedded in an Error description and
// falls back to formatting the reported call frames.
func renderStack(description string, st *stackTrace) string {
	if i := strings.Index(description, "\n    at "); i >= 0 {
		return description[i+1:]
	}
	if st == nil || len(st.CallFrames) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range st.CallFrames {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := f.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&b, "    at %s (%s:%d:%d)", name, f.URL, f.LineNumber+1, f.ColumnNumber+1)
	}
	return b.String()
}

func mapProperties(props []propertyDescriptor) []protocol.PropertyDescriptor {
	out := make([]protocol.PropertyDescriptor, 0, len(props))
	for _, p := range props {
		out = append(out, protocol.PropertyDescriptor{
			Name:       p.Name,
			IsOwn:      p.IsOwn,
			Symbol:     p.Symbol != nil,
			Enumerable: p.Enumerable,
			WasThrown:  p.WasThrown,
			Value:      p.Value,
		})
	}
	return out
}
