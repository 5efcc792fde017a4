package extn

import (
	"context"

	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
)

// Channel is a device-control extension instance. The loader receives fully
// constructed channels from the builder; ownership transfers to the
// extension state at commit.
type Channel interface {
	// Start brings the channel online. Device channels are started, and
	// must return, before any deferred channel starts.
	Start(ctx context.Context) error
	Close() error
}

// ChannelBuilder is the channel entry point a library exports. Required for
// every library whose manifest entry declares channel symbols.
type ChannelBuilder interface {
	Build(extnID string) (Channel, error)
}

// MethodsBuilder is the method-table entry point a library may export.
type MethodsBuilder interface {
	// Build constructs the extension's method table. The sender is scoped
	// to the extension's declared capabilities; rx delivers commands the
	// gateway forwards to the extension.
	Build(sender *Sender, rx <-chan Message) openrpc.MethodTable
	// ExtendedCapabilities returns the extension's OpenRPC contribution,
	// or nil if it has none.
	ExtendedCapabilities() *openrpc.Document
}

// Library is one loaded extension library: its manifest entry plus the entry
// points resolved from it. The loader treats libraries as a closed, trusted
// set discovered before boot.
type Library struct {
	entry          manifest.LibraryEntry
	channelBuilder ChannelBuilder
	methodsBuilder MethodsBuilder
}

// NewLibrary wraps a manifest entry with its resolved entry points. Either
// builder may be nil when the library does not export it.
func NewLibrary(entry manifest.LibraryEntry, cb ChannelBuilder, mb MethodsBuilder) *Library {
	return &Library{entry: entry, channelBuilder: cb, methodsBuilder: mb}
}

// Name returns the library's declared name.
func (l *Library) Name() string { return l.entry.Name }

// Entry returns the library's manifest entry.
func (l *Library) Entry() manifest.LibraryEntry { return l.entry }

// ChannelBuilder resolves the channel entry point.
func (l *Library) ChannelBuilder() (ChannelBuilder, bool) {
	return l.channelBuilder, l.channelBuilder != nil
}

// MethodsBuilder resolves the method-table entry point.
func (l *Library) MethodsBuilder() (MethodsBuilder, bool) {
	return l.methodsBuilder, l.methodsBuilder != nil
}
