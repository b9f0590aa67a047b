package event

import (
	"encoding/json"
	"testing"

	"github.com/silkworks/filament/pkg/nostr/eventid"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

var testSec = "f16dca5c36931305a4ac30d31b77962af96ea6b7240736da11af318fb7e11317"

func testEvent(t *testing.T) *T {
	t.Helper()
	ev := &T{
		CreatedAt: timestamp.T(1700000000),
		Kind:      kind.TextNote,
		Tags:      tags.T{{"t", "greeting"}},
		Content:   "hello \"world\"\nsecond line",
	}
	if err := ev.Sign(testSec); err != nil {
		t.Fatal(err)
	}
	return ev
}

func TestSignAndVerify(t *testing.T) {
	ev := testEvent(t)
	if !ev.CheckID() {
		t.Fatal("signed event id does not verify")
	}
	valid, err := ev.CheckSignature()
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("signed event signature does not verify")
	}
}

func TestTamperedContentFailsIDCheck(t *testing.T) {
	ev := testEvent(t)
	ev.Content += "!"
	if ev.CheckID() {
		t.Fatal("id check passed on altered content")
	}
}

func TestFlippedIDFailsVerification(t *testing.T) {
	ev := testEvent(t)
	// flip one nibble of the claimed id
	id := []byte(ev.ID)
	if id[0] == '0' {
		id[0] = '1'
	} else {
		id[0] = '0'
	}
	ev.ID = eventid.T(id)
	if ev.CheckID() {
		t.Fatal("id check passed on flipped id")
	}
}

func TestFlippedSigFailsVerification(t *testing.T) {
	ev := testEvent(t)
	sig := []byte(ev.Sig)
	if sig[0] == '0' {
		sig[0] = '1'
	} else {
		sig[0] = '0'
	}
	ev.Sig = string(sig)
	valid, err := ev.CheckSignature()
	if valid {
		t.Fatal("flipped signature verified")
	}
	_ = err // a parse error is acceptable here, validity is what matters
}

func TestSerializeRoundTrip(t *testing.T) {
	ev := testEvent(t)
	b := ev.Serialize()
	ev2 := &T{}
	if err := json.Unmarshal(b, ev2); err != nil {
		t.Fatal(err)
	}
	if ev2.ID != ev.ID || ev2.PubKey != ev.PubKey ||
		ev2.CreatedAt != ev.CreatedAt || ev2.Kind != ev.Kind ||
		ev2.Content != ev.Content || ev2.Sig != ev.Sig {
		t.Fatalf("round trip mismatch:\n%s\n%s", ev, ev2)
	}
	if !ev2.CheckID() {
		t.Fatal("round tripped event fails id check")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	ev := testEvent(t)
	if err := ev.Validate(); err != nil {
		t.Fatal(err)
	}
	bad := *ev
	bad.PubKey = "nothex"
	if err := bad.Validate(); err == nil {
		t.Fatal("accepted invalid pubkey")
	}
	bad = *ev
	bad.Sig = bad.Sig[:64]
	if err := bad.Validate(); err == nil {
		t.Fatal("accepted truncated signature")
	}
	bad = *ev
	bad.CreatedAt = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("accepted negative timestamp")
	}
}
