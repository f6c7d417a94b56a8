package engine_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/inspectrepl/engine"
	"github.com/jonwraymond/inspectrepl/protocol/protocoltest"
)

func Example_onLine() {
	client := protocoltest.New()
	client.SetValue("6 * 7", protocoltest.Number(42))

	e, err := engine.New(engine.Config{Client: client})
	if err != nil {
		panic(err)
	}
	res, err := e.OnLine(context.Background(), "6 * 7")
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Text)
	// Output:
	// 42
}

func Example_onAutocomplete() {
	client := protocoltest.New()
	client.LexicalNames = []string{"answer", "another"}
	client.SetValue("globalThis", protocoltest.Object("global-1", "global"))

	e, err := engine.New(engine.Config{Client: client})
	if err != nil {
		panic(err)
	}
	out, err := e.OnAutocomplete(context.Background(), "an")
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Kind, out.Items)
	// Output:
	// list [swer other]
}
