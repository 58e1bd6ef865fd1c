package engine

import "testing"

func TestHashTablePutGet(t *testing.T) {
	ht, err := NewHashTable(1)
	if err != nil {
		t.Fatal(err)
	}

	move := MakeMove(Normal, SquareE2, SquareE4, NoPiece, WhitePawn)
	ht.put(0xdeadbeefcafebabe, hashEntry{kind: exact, score: 42, depth: 7, move: move})

	entry := ht.get(0xdeadbeefcafebabe)
	if entry.kind != exact || entry.score != 42 || entry.depth != 7 || entry.move != move {
		t.Errorf("entry does not round trip: %+v", entry)
	}

	if entry := ht.get(0x1234567812345678); entry.kind != noEntry {
		t.Errorf("expected a miss, got %+v", entry)
	}
}

func TestHashTableSizeIsPowerOfTwo(t *testing.T) {
	for _, mb := range []int{1, 2, 16, 64} {
		ht, err := NewHashTable(mb)
		if err != nil {
			t.Fatal(err)
		}
		size := ht.Size()
		if size&(size-1) != 0 {
			t.Errorf("size %d of a %d MB table is not a power of two", size, mb)
		}
	}
}

func TestHashTableRejectsBadSizes(t *testing.T) {
	for _, mb := range []int{0, -1, 1 << 21} {
		if _, err := NewHashTable(mb); err == nil {
			t.Errorf("NewHashTable(%d) should have failed", mb)
		}
	}
}

func TestHashTableClear(t *testing.T) {
	ht, err := NewHashTable(1)
	if err != nil {
		t.Fatal(err)
	}
	ht.put(0xdeadbeefcafebabe, hashEntry{kind: exact, score: 1, depth: 1})
	ht.Clear()
	if entry := ht.get(0xdeadbeefcafebabe); entry.kind != noEntry {
		t.Errorf("clear left an entry behind: %+v", entry)
	}
}

func TestHashTableSecondBucket(t *testing.T) {
	ht, err := NewHashTable(1)
	if err != nil {
		t.Fatal(err)
	}

	// Two hashes landing on the same first bucket: the much deeper
	// second entry is routed to the second bucket, so both remain
	// retrievable.
	h1 := uint64(0x11111111e0000004)
	h2 := uint64(0x22222222e0000004)
	ht.put(h1, hashEntry{kind: exact, score: 1, depth: 1})
	ht.put(h2, hashEntry{kind: exact, score: 2, depth: 20})

	if e := ht.get(h1); e.kind == noEntry || e.score != 1 {
		t.Errorf("first entry was evicted: %+v", e)
	}
	if e := ht.get(h2); e.kind == noEntry || e.score != 2 {
		t.Errorf("second entry was not kept in the second bucket: %+v", e)
	}
}
