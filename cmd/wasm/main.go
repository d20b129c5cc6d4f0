//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/hack-pad/hackpadfs/indexeddb"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/kittclouds/linkgraph/internal/store"
	"github.com/kittclouds/linkgraph/pkg/backlinks"
	"github.com/kittclouds/linkgraph/pkg/wikilink"
)

// Version info
const Version = "0.3.0"

// Global state
var index *backlinks.Index
var snapshots store.SnapshotStore
var repo *store.IndexRepository

func main() {
	commonlog.Configure(1, nil)

	index = backlinks.New(backlinks.DefaultConfig())
	println("[LinkGraph] WASM Ready v" + Version)

	// Register exports
	js.Global().Set("LinkGraph", js.ValueOf(map[string]interface{}{
		"version":        js.FuncOf(getVersion),
		"addDocument":    js.FuncOf(addDocument),
		"updateDocument": js.FuncOf(updateDocument),
		"removeDocument": js.FuncOf(removeDocument),
		"resolveLink":    js.FuncOf(resolveLink),
		"renderContent":  js.FuncOf(renderContent),
		"clear":          js.FuncOf(clearIndex),
		// Queries
		"getBacklinks":           js.FuncOf(getBacklinks),
		"getOutgoingLinks":       js.FuncOf(getOutgoingLinks),
		"getUnlinkedMentions":    js.FuncOf(getUnlinkedMentions),
		"getOrphanDocuments":     js.FuncOf(getOrphanDocuments),
		"getMostLinkedDocuments": js.FuncOf(getMostLinkedDocuments),
		"getGraphData":           js.FuncOf(getGraphData),
		"getLocalGraph":          js.FuncOf(getLocalGraph),
		"getUnresolvedLinks":     js.FuncOf(getUnresolvedLinks),
		"suggestLinks":           js.FuncOf(suggestLinks),
		"stats":                  js.FuncOf(getStats),
		// Persistence
		"serialize":   js.FuncOf(serialize),
		"deserialize": js.FuncOf(deserialize),
		"initStorage": js.FuncOf(initStorage),
		"save":        js.FuncOf(save),
		"load":        js.FuncOf(load),
	}))

	select {}
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// =============================================================================
// Mutations
// =============================================================================

// addDocument: [id, title, content]
func addDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: id, title, content")
	}
	id := args[0].String()
	index.AddDocument(id, args[1].String(), args[2].String())
	return successResult("added " + id)
}

// updateDocument: [id, title, content]
func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: id, title, content")
	}
	id := args[0].String()
	index.UpdateDocument(id, args[1].String(), args[2].String())
	return successResult("updated " + id)
}

// removeDocument: [id]
func removeDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	id := args[0].String()
	index.RemoveDocument(id)
	return successResult("removed " + id)
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	index.Clear()
	return successResult("cleared")
}

// resolveLink: [text]
// Returns: the document id, or null
func resolveLink(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: text")
	}
	if id, ok := index.ResolveLink(args[0].String()); ok {
		return id
	}
	return js.Null()
}

// renderContent: [text]
// Returns: text with every [[link]] rendered as an anchor or unresolved span
func renderContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: text")
	}
	return wikilink.RenderContent(args[0].String(), func(title string) bool {
		_, ok := index.ResolveLink(title)
		return ok
	})
}

// =============================================================================
// Queries
// =============================================================================

// getBacklinks: [targetId]
func getBacklinks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: targetId")
	}
	return jsonResult(index.GetBacklinks(args[0].String()))
}

// getOutgoingLinks: [documentId]
func getOutgoingLinks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: documentId")
	}
	return jsonResult(index.GetOutgoingLinks(args[0].String()))
}

// getUnlinkedMentions: [title]
func getUnlinkedMentions(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: title")
	}
	return jsonResult(index.GetUnlinkedMentions(args[0].String()))
}

func getOrphanDocuments(this js.Value, args []js.Value) interface{} {
	return jsonResult(index.GetOrphanDocuments())
}

// getMostLinkedDocuments: [limit (optional)]
func getMostLinkedDocuments(this js.Value, args []js.Value) interface{} {
	limit := 0
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		limit = args[0].Int()
	}
	return jsonResult(index.GetMostLinkedDocuments(limit))
}

func getGraphData(this js.Value, args []js.Value) interface{} {
	return jsonResult(index.GetGraphData())
}

// getLocalGraph: [id, depth (optional, default 1)]
func getLocalGraph(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1+ args: id, [depth]")
	}
	depth := 1
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		depth = args[1].Int()
	}
	return jsonResult(index.GetLocalGraph(args[0].String(), depth))
}

func getUnresolvedLinks(this js.Value, args []js.Value) interface{} {
	return jsonResult(index.GetUnresolvedLinks())
}

// suggestLinks: [documentId]
func suggestLinks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: documentId")
	}
	return jsonResult(index.SuggestLinks(args[0].String()))
}

func getStats(this js.Value, args []js.Value) interface{} {
	return jsonResult(index.Stats())
}

// =============================================================================
// Persistence
// =============================================================================

func serialize(this js.Value, args []js.Value) interface{} {
	start := time.Now()
	result := jsonResult(index.Serialize())
	commonlog.GetLogger("linkgraph.wasm").Debugf("serialized in %s", time.Since(start))
	return result
}

// deserialize: [snapshotJSON]
func deserialize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: snapshotJSON")
	}
	var data backlinks.SerializedIndex
	if err := json.Unmarshal([]byte(args[0].String()), &data); err != nil {
		return errorResult("snapshot json: " + err.Error())
	}
	if data.Version != backlinks.SerializedVersion {
		return errorResult("unsupported snapshot version")
	}
	index.Deserialize(&data)
	return successResult("deserialized")
}

// initStorage: [backend (optional): "idb" (default), "sqlite" or "memory"]
func initStorage(this js.Value, args []js.Value) interface{} {
	backend := "idb"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		backend = args[0].String()
	}

	if snapshots != nil {
		snapshots.Close()
		snapshots, repo = nil, nil
	}

	var s store.SnapshotStore
	switch backend {
	case "idb":
		fs, err := indexeddb.NewFS(context.Background(), "linkgraph", indexeddb.Options{})
		if err != nil {
			return errorResult("failed to create idb fs: " + err.Error())
		}
		s, err = store.NewFSStore(fs, "snapshots")
		if err != nil {
			return errorResult(err.Error())
		}
	case "sqlite":
		var err error
		s, err = store.NewSQLiteStore()
		if err != nil {
			return errorResult(err.Error())
		}
	case "memory":
		s = store.NewMemStore()
	default:
		return errorResult("unknown storage backend: " + backend)
	}

	snapshots = s
	repo = store.NewIndexRepository(s)
	return successResult("storage initialized: " + backend)
}

func save(this js.Value, args []js.Value) interface{} {
	if repo == nil {
		return errorResult("storage not initialized")
	}
	if err := repo.Save(index); err != nil {
		return errorResult("save failed: " + err.Error())
	}
	return successResult("saved")
}

// load restores the stored snapshot, if any
func load(this js.Value, args []js.Value) interface{} {
	if repo == nil {
		return errorResult("storage not initialized")
	}
	ok, err := repo.Load(index)
	if err != nil {
		return errorResult("load failed: " + err.Error())
	}
	if !ok {
		return successResult("nothing stored")
	}
	if at, err := repo.SavedAt(); err == nil && !at.IsZero() {
		return successResult("loaded snapshot saved " + at.UTC().Format(time.RFC3339))
	}
	return successResult("loaded")
}

// Helper: Marshal a query result
func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
