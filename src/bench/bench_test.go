package bench

import (
	"testing"

	"github.com/slatechain/slate/src/common"
)

func TestGenerateTransactions(t *testing.T) {
	txs, err := GenerateTransactions(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(txs))
	}

	for i, ptx := range txs {
		if ptx.Transaction().Nonce != uint64(i) {
			t.Fatalf("transaction %d has nonce %d", i, ptx.Transaction().Nonce)
		}
	}
}

func TestPathFull(t *testing.T) {
	p := Path{"node", "construct", "medium"}

	if full := p.Full(); full != "::node::construct::medium" {
		t.Fatalf("unexpected path %s", full)
	}
	if !p.Has("construct") {
		t.Fatal("path should contain construct")
	}
	if p.Has("submit") {
		t.Fatal("path should not contain submit")
	}
}

func TestConstructionBenchmark(t *testing.T) {
	desc := &ConstructionBenchmarkDescription{Size: SizeCustom, CustomCount: 25}

	b, err := desc.Setup()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestSubmissionBenchmark(t *testing.T) {
	desc := &SubmissionBenchmarkDescription{Size: SizeSmall}

	b, err := desc.Setup()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestRunBenchmark(t *testing.T) {
	desc := &ConstructionBenchmarkDescription{Size: SizeCustom, CustomCount: 10}

	res, err := RunBenchmark(desc, ModeRegular, common.NewTestEntry(t, "bench"))
	if err != nil {
		t.Fatal(err)
	}

	if res.Name != desc.Name() {
		t.Fatalf("result name should be %q, not %q", desc.Name(), res.Name)
	}
	if res.RawAverageNs <= 0 || res.AverageNs <= 0 {
		t.Fatalf("averages should be positive: raw %d, trimmed %d", res.RawAverageNs, res.AverageNs)
	}
}

func TestRunBenchmarkProfileMode(t *testing.T) {
	desc := &SubmissionBenchmarkDescription{Size: SizeCustom, CustomCount: 10}

	res, err := RunBenchmark(desc, ModeProfile, common.NewTestEntry(t, "bench"))
	if err != nil {
		t.Fatal(err)
	}
	if res.AverageNs <= 0 {
		t.Fatalf("average should be positive, not %d", res.AverageNs)
	}
}

func TestRegistry(t *testing.T) {
	descs := Registry()

	if len(descs) != 2*len(StandardSizes) {
		t.Fatalf("registry should hold %d entries, not %d", 2*len(StandardSizes), len(descs))
	}

	seen := map[string]bool{}
	for _, desc := range descs {
		full := desc.Path().Full()
		if seen[full] {
			t.Fatalf("duplicate path %s", full)
		}
		seen[full] = true
	}
}
