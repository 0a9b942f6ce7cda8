package common

import (
	"testing"
)

func TestRollingIndex(t *testing.T) {
	size := 10
	testSize := 3 * size
	rollingIndex := NewRollingIndex("test", size)

	items := []string{}
	for i := 0; i < testSize; i++ {
		item := "item" + string(rune('0'+i%10))
		rollingIndex.Set(item, i)
		items = append(items, item)
	}

	cached, lastIndex := rollingIndex.GetLastWindow()

	expectedLastIndex := testSize - 1
	if lastIndex != expectedLastIndex {
		t.Fatalf("lastIndex should be %d, not %d", expectedLastIndex, lastIndex)
	}

	start := (testSize / (2 * size)) * (size)
	expectedItems := items[start:]

	for i, item := range expectedItems {
		if cached[i] != item {
			t.Fatalf("cached[%d] should be %v, not %v", i, item, cached[i])
		}
	}

	// Get items from a skip index
	skipIndex := testSize - 5
	expected := items[skipIndex+1:]

	got, err := rollingIndex.Get(skipIndex)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(expected) {
		t.Fatalf("Get should return %d items, not %d", len(expected), len(got))
	}
	for i, item := range expected {
		if got[i] != item {
			t.Fatalf("got[%d] should be %v, not %v", i, item, got[i])
		}
	}
}

func TestRollingIndexSkippedIndex(t *testing.T) {
	rollingIndex := NewRollingIndex("test", 10)

	if err := rollingIndex.Set("item0", 0); err != nil {
		t.Fatal(err)
	}

	err := rollingIndex.Set("item2", 2)
	if !IsStore(err, SkippedIndex) {
		t.Fatalf("expected SkippedIndex error, got %v", err)
	}
}

func TestRollingIndexTooLate(t *testing.T) {
	size := 10
	rollingIndex := NewRollingIndex("test", size)

	for i := 0; i < 3*size; i++ {
		rollingIndex.Set(i, i)
	}

	// the oldest half was rolled away
	if _, err := rollingIndex.GetItem(0); !IsStore(err, TooLate) {
		t.Fatalf("expected TooLate error, got %v", err)
	}

	if _, err := rollingIndex.Get(0); !IsStore(err, TooLate) {
		t.Fatalf("expected TooLate error, got %v", err)
	}
}

func TestRollingIndexGetItem(t *testing.T) {
	rollingIndex := NewRollingIndex("test", 10)

	rollingIndex.Set("item0", 0)
	rollingIndex.Set("item1", 1)

	item, err := rollingIndex.GetItem(1)
	if err != nil {
		t.Fatal(err)
	}
	if item != "item1" {
		t.Fatalf("GetItem(1) should be item1, not %v", item)
	}

	if _, err := rollingIndex.GetItem(5); !IsStore(err, KeyNotFound) {
		t.Fatalf("expected KeyNotFound error, got %v", err)
	}
}
