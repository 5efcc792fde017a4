package handlers

import (
	"context"
	"testing"

	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

func testPlatform(t *testing.T) *platform.State {
	t.Helper()
	ps, err := platform.New(platform.Config{
		Device: &manifest.DeviceManifest{},
		Apps: &manifest.StaticAppLibrary{Apps: map[string]*manifest.AppManifest{
			"com.x.y": {AppKey: "com.x.y", Name: "Example App"},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ps
}

func call(t *testing.T, ps *platform.State, method, argsJSON string) any {
	t.Helper()
	table := UserGrantsMethods(ps)
	handler, ok := table[method]
	if !ok {
		t.Fatalf("method %s not in table", method)
	}
	req := rpc.Request{
		Ctx:        rpc.CallContext{AppID: "com.settings", Protocol: rpc.ProtocolJSONRPC},
		Method:     method,
		ParamsJSON: `[{}, ` + argsJSON + `]`,
	}
	result, jsonErr := handler.Invoke(context.Background(), req)
	if jsonErr != nil {
		t.Fatalf("%s returned error: %+v", method, jsonErr)
	}
	return result
}

func TestGrantThenListByApp(t *testing.T) {
	ps := testPlatform(t)

	call(t, ps, "usergrants.grant", `{"capability": "device:info", "role": "use", "options": {"appId": "com.x.y"}}`)

	result := call(t, ps, "usergrants.app", `{"appId": "com.x.y"}`)
	infos, ok := result.([]GrantInfo)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(infos))
	}
	info := infos[0]
	if info.State != "allowed" || info.Capability != "device:info" || info.Role != "use" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.App == nil || info.App.ID != "com.x.y" || info.App.Title != "Example App" {
		t.Errorf("app info not resolved: %+v", info.App)
	}
	if info.Expires != "" {
		t.Errorf("forever grants carry no expiry, got %q", info.Expires)
	}
}

func TestDenyThenClear(t *testing.T) {
	ps := testPlatform(t)

	call(t, ps, "usergrants.deny", `{"capability": "device:info", "role": "use", "options": {"appId": "com.x.y"}}`)

	result := call(t, ps, "usergrants.app", `{"appId": "com.x.y"}`).([]GrantInfo)
	if len(result) != 1 || result[0].State != "denied" {
		t.Fatalf("expected one denied entry, got %+v", result)
	}

	call(t, ps, "usergrants.clear", `{"capability": "device:info", "role": "use", "options": {"appId": "com.x.y"}}`)
	result = call(t, ps, "usergrants.app", `{"appId": "com.x.y"}`).([]GrantInfo)
	if len(result) != 0 {
		t.Fatalf("expected no entries after clear, got %+v", result)
	}
}

func TestDeviceScopedGrant(t *testing.T) {
	ps := testPlatform(t)

	// No options.appId addresses the device scope.
	call(t, ps, "usergrants.grant", `{"capability": "secure:token", "role": "use"}`)

	result := call(t, ps, "usergrants.device", `{}`).([]GrantInfo)
	if len(result) != 1 {
		t.Fatalf("expected 1 device grant, got %d", len(result))
	}
	if result[0].App != nil {
		t.Error("device grants carry no app info")
	}
}

func TestListByCapability(t *testing.T) {
	ps := testPlatform(t)

	call(t, ps, "usergrants.grant", `{"capability": "device:info", "role": "use", "options": {"appId": "com.x.y"}}`)
	call(t, ps, "usergrants.deny", `{"capability": "device:info", "role": "use", "options": {"appId": "com.other"}}`)
	call(t, ps, "usergrants.grant", `{"capability": "account:profile", "role": "use", "options": {"appId": "com.x.y"}}`)

	result := call(t, ps, "usergrants.capability", `{"capability": "device:info"}`).([]GrantInfo)
	if len(result) != 2 {
		t.Fatalf("expected 2 entries for device:info, got %d", len(result))
	}
}

func TestMissingArgsRejected(t *testing.T) {
	ps := testPlatform(t)
	table := UserGrantsMethods(ps)

	req := rpc.Request{Method: "usergrants.grant", ParamsJSON: `[{}]`}
	if _, jsonErr := table["usergrants.grant"].Invoke(context.Background(), req); jsonErr == nil {
		t.Error("expected invalid-params error without argument element")
	}
}
