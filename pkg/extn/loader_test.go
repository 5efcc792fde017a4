package extn

import (
	"context"
	"errors"
	"testing"

	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

type fakeChannel struct{}

func (fakeChannel) Start(context.Context) error { return nil }
func (fakeChannel) Close() error                { return nil }

type fakeChannelBuilder struct {
	fail bool
}

func (b fakeChannelBuilder) Build(extnID string) (Channel, error) {
	if b.fail {
		return nil, errors.New("build failed")
	}
	return fakeChannel{}, nil
}

type fakeMethodsBuilder struct {
	methods []string
	doc     *openrpc.Document
}

func (b fakeMethodsBuilder) Build(sender *Sender, rx <-chan Message) openrpc.MethodTable {
	table := make(openrpc.MethodTable)
	for _, name := range b.methods {
		table[name] = openrpc.Handler{
			Invoke: func(context.Context, rpc.Request) (any, *jsonrpc.Error) { return nil, nil },
			Source: sender.ID().String(),
		}
	}
	return table
}

func (b fakeMethodsBuilder) ExtendedCapabilities() *openrpc.Document { return b.doc }

func libraryWith(name string, symbols []manifest.Symbol, cb ChannelBuilder, mb MethodsBuilder) *Library {
	return NewLibrary(manifest.LibraryEntry{Name: name, Path: "/usr/lib/" + name, Symbols: symbols}, cb, mb)
}

func TestLoadPartitionsChannels(t *testing.T) {
	lib := libraryWith("devlib", []manifest.Symbol{
		{ID: "fb:channel:device:thunder", Kind: manifest.SymbolChannel},
		{ID: "fb:channel:launcher:main", Kind: manifest.SymbolChannel},
		{ID: "fb:channel:device:remote", Kind: manifest.SymbolChannel},
	}, fakeChannelBuilder{}, nil)

	result, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.DeviceChannels) != 2 {
		t.Errorf("expected 2 device channels, got %d", len(result.DeviceChannels))
	}
	if len(result.DeferredChannels) != 1 {
		t.Errorf("expected 1 deferred channel, got %d", len(result.DeferredChannels))
	}
	if total := len(result.DeviceChannels) + len(result.DeferredChannels); total != 3 {
		t.Errorf("channel counts must add up to input: got %d, want 3", total)
	}
}

func TestLoadChannelIDParseFailureAbortsBootstrap(t *testing.T) {
	lib := libraryWith("devlib", []manifest.Symbol{
		{ID: "fb:channel:device:thunder", Kind: manifest.SymbolChannel},
		{ID: "not-an-id", Kind: manifest.SymbolChannel},
	}, fakeChannelBuilder{}, nil)

	result, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if !errors.Is(err, ErrBootstrap) {
		t.Fatalf("expected ErrBootstrap, got %v", err)
	}
	if result != nil {
		t.Error("expected nil result on bootstrap failure")
	}
}

func TestLoadMissingChannelBuilderAbortsBootstrap(t *testing.T) {
	lib := libraryWith("devlib", []manifest.Symbol{
		{ID: "fb:channel:device:thunder", Kind: manifest.SymbolChannel},
	}, nil, nil)

	_, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if !errors.Is(err, ErrBootstrap) {
		t.Fatalf("expected ErrBootstrap, got %v", err)
	}
}

func TestLoadChannelBuildFailureAbortsBootstrap(t *testing.T) {
	lib := libraryWith("devlib", []manifest.Symbol{
		{ID: "fb:channel:device:thunder", Kind: manifest.SymbolChannel},
	}, fakeChannelBuilder{fail: true}, nil)

	_, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if !errors.Is(err, ErrBootstrap) {
		t.Fatalf("expected ErrBootstrap, got %v", err)
	}
}

func TestLoadSkipsInvalidExtensions(t *testing.T) {
	lib := libraryWith("extlib", []manifest.Symbol{
		{ID: "garbage", Kind: manifest.SymbolExtension},
		{ID: "fb:extn:distributor:general", Kind: manifest.SymbolExtension, Uses: []string{"device:info"}},
	}, nil, fakeMethodsBuilder{methods: []string{"privacy.settings"}})

	result, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("extension failures must not abort: %v", err)
	}
	if _, ok := result.Methods["privacy.settings"]; !ok {
		t.Error("valid extension's methods missing from merged table")
	}
	if len(result.Methods) != 1 {
		t.Errorf("expected 1 method, got %d", len(result.Methods))
	}
}

func TestLoadSkipsExtensionWithoutBuilder(t *testing.T) {
	lib := libraryWith("extlib", []manifest.Symbol{
		{ID: "fb:extn:distributor:general", Kind: manifest.SymbolExtension},
	}, nil, nil)

	result, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Methods) != 0 {
		t.Errorf("expected no methods, got %d", len(result.Methods))
	}
}

func TestLoadCollectsOpenRPCContributions(t *testing.T) {
	doc := &openrpc.Document{Version: "1.0.0"}
	lib := libraryWith("extlib", []manifest.Symbol{
		{ID: "fb:extn:distributor:general", Kind: manifest.SymbolExtension},
	}, nil, fakeMethodsBuilder{methods: []string{"x.y"}, doc: doc})

	result, err := Load([]*Library{lib}, make(chan Message, 1), logging.NewDiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.OpenRPCs) != 1 || result.OpenRPCs[0] != doc {
		t.Errorf("expected collected openrpc contribution")
	}
}

func TestLoadDuplicateMethodsDoNotPanic(t *testing.T) {
	mk := func(name string) *Library {
		return libraryWith(name, []manifest.Symbol{
			{ID: "fb:extn:distributor:" + name, Kind: manifest.SymbolExtension},
		}, nil, fakeMethodsBuilder{methods: []string{"shared.method"}})
	}

	result, err := Load([]*Library{mk("one"), mk("two")}, make(chan Message, 1), logging.NewDiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	// Last writer wins.
	if got := result.Methods["shared.method"].Source; got != "fb:extn:distributor:two" {
		t.Errorf("expected last writer to win, got source %q", got)
	}
}
