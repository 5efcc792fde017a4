package extn

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
)

// ErrBootstrap marks unrecoverable load failures. Channels are a closed,
// trusted set: a channel that fails to parse or build is a boot-time bug and
// aborts the whole bootstrap.
var ErrBootstrap = errors.New("extn: bootstrap error")

// PreloadedChannel is a constructed channel awaiting start, paired with its
// id and originating symbol.
type PreloadedChannel struct {
	Channel Channel
	ExtnID  ID
	Symbol  manifest.Symbol
}

// LoadResult is everything a load pass produced. Device channels are started
// synchronously during device bring-up; deferred channels start afterwards.
type LoadResult struct {
	DeviceChannels   []PreloadedChannel
	DeferredChannels []PreloadedChannel
	Methods          openrpc.MethodTable
	OpenRPCs         []*openrpc.Document
}

// extnCommandBuffer sizes each extension's private command channel.
const extnCommandBuffer = 32

// Load walks the libraries in order, building channels and collecting method
// contributions.
//
// Channel failures (unparseable id, missing builder, build error) abort the
// load. Extension failures (unparseable id, missing builder) skip that
// extension: feature modules are optional contributions.
func Load(libraries []*Library, gatewayTx chan<- Message, logger *slog.Logger) (*LoadResult, error) {
	result := &LoadResult{Methods: make(openrpc.MethodTable)}

	for _, lib := range libraries {
		logger.Info("loading library", "name", lib.Name(), "symbols", len(lib.Entry().Symbols))

		for _, sym := range lib.Entry().Channels() {
			logger.Debug("loading channel builder", "id", sym.ID)
			id, err := ParseID(sym.ID)
			if err != nil {
				logger.Error("invalid manifest entry for channel id", "id", sym.ID, "error", err)
				return nil, fmt.Errorf("%w: %v", ErrBootstrap, err)
			}
			builder, ok := lib.ChannelBuilder()
			if !ok {
				logger.Error("missing channel builder", "library", lib.Name())
				return nil, fmt.Errorf("%w: library %s declares channel %s but exports no builder",
					ErrBootstrap, lib.Name(), sym.ID)
			}
			channel, err := builder.Build(id.String())
			if err != nil {
				logger.Error("channel build failed", "id", sym.ID, "error", err)
				return nil, fmt.Errorf("%w: building channel %s: %v", ErrBootstrap, sym.ID, err)
			}
			preloaded := PreloadedChannel{Channel: channel, ExtnID: id, Symbol: sym}
			if id.IsDeviceChannel() {
				result.DeviceChannels = append(result.DeviceChannels, preloaded)
			} else {
				result.DeferredChannels = append(result.DeferredChannels, preloaded)
			}
		}

		for _, sym := range lib.Entry().Extensions() {
			logger.Debug("loading extension", "id", sym.ID)
			id, err := ParseID(sym.ID)
			if err != nil {
				logger.Warn("skipping extension with invalid id", "id", sym.ID, "error", err)
				continue
			}
			builder, ok := lib.MethodsBuilder()
			if !ok {
				logger.Warn("skipping extension without methods builder", "id", sym.ID, "library", lib.Name())
				continue
			}

			rx := make(chan Message, extnCommandBuffer)
			sender := NewSender(id, sym.Uses, gatewayTx)

			if doc := builder.ExtendedCapabilities(); doc != nil {
				result.OpenRPCs = append(result.OpenRPCs, doc)
			}
			result.Methods.Merge(builder.Build(sender, rx), logger)
		}
	}

	return result, nil
}
