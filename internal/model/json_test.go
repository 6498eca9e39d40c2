package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestJarsColumnRoundTrip(t *testing.T) {
	jars := Jars{Spend: 500, Save: 300, Give: 200}

	v, err := jars.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got Jars
	if err := got.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got != jars {
		t.Errorf("got %+v, want %+v", got, jars)
	}
}

func TestJarsScanTolerant(t *testing.T) {
	for _, src := range []any{nil, "", "not json", []byte("{broken"), 42} {
		var jars Jars
		if err := jars.Scan(src); err != nil {
			t.Errorf("Scan(%v) returned error: %v", src, err)
		}
		if jars != (Jars{}) {
			t.Errorf("Scan(%v) left %+v, want zero value", src, jars)
		}
	}
}

func TestScheduleColumnRoundTrip(t *testing.T) {
	schedule := Schedule{Frequency: "weekly", Days: []int{1, 3, 5}}

	v, err := schedule.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got Schedule
	if err := got.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !reflect.DeepEqual(got, schedule) {
		t.Errorf("got %+v, want %+v", got, schedule)
	}
}

func TestStringListColumnRoundTrip(t *testing.T) {
	list := StringList{"a.jpg", "b.jpg"}

	v, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got StringList
	if err := got.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !reflect.DeepEqual(got, list) {
		t.Errorf("got %v, want %v", got, list)
	}
}

func TestStringListMarshalsEmptyAsArray(t *testing.T) {
	var list StringList

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("marshal = %s, want []", data)
	}

	v, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "[]" {
		t.Errorf("value = %v, want []", v)
	}
}
