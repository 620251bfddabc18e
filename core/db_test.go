package core

import (
	"reflect"
	"testing"
)

func TestParseOrdering(t *testing.T) {
	allowed := []string{"last_name", "first_name", "created_at"}
	tests := []struct {
		val  string
		want []DBOrdering
	}{
		{val: "", want: nil},
		{val: "lol,-hacker", want: nil},
		{val: "last_name", want: []DBOrdering{{Field: "last_name", Ascending: true}}},
		{
			val:  " -created_at , first_name,unknown",
			want: []DBOrdering{{Field: "created_at", Ascending: false}, {Field: "first_name", Ascending: true}},
		},
		{val: "-", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			if got := ParseOrdering(tt.val, allowed...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrdering() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestDBOrdering_String(t *testing.T) {
	if got := (DBOrdering{Field: "last_name", Ascending: true}).String(); got != "last_name ASC" {
		t.Errorf("String() = %v; want last_name ASC", got)
	}
	if got := (DBOrdering{Field: "created_at"}).String(); got != "created_at DESC" {
		t.Errorf("String() = %v; want created_at DESC", got)
	}
}
