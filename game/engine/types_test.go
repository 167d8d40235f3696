package engine

import "testing"

func TestParseCellKey(t *testing.T) {
	tests := []struct {
		key      string
		expected GridCell
		wantErr  bool
	}{
		{"5,5", GridCell{I: 5, J: 5}, false},
		{"369894,-1220628", GridCell{I: 369894, J: -1220628}, false},
		{" 1 , 2 ", GridCell{I: 1, J: 2}, false},
		{"1", GridCell{}, true},
		{"1,2,3", GridCell{}, true},
		{"a,b", GridCell{}, true},
		{"", GridCell{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cell, err := ParseCellKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCellKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && cell != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, cell)
			}
		})
	}

	cell := GridCell{I: -7, J: 12}
	if parsed, _ := ParseCellKey(cell.Key()); parsed != cell {
		t.Errorf("Expected key round trip, got %v", parsed)
	}
}

func TestParseCoin(t *testing.T) {
	coin := Coin{Original: GridCell{I: 369894, J: -1220628}, Serial: 3}
	if coin.String() != "369894:-1220628#3" {
		t.Errorf("Unexpected label %q", coin.String())
	}

	parsed, err := ParseCoin(coin.String())
	if err != nil {
		t.Fatalf("ParseCoin failed: %v", err)
	}
	if parsed != coin {
		t.Errorf("Expected %v, got %v", coin, parsed)
	}

	for _, bad := range []string{"1:2", "1:2#-1", "1:2#x", "a:b#0"} {
		if _, err := ParseCoin(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
