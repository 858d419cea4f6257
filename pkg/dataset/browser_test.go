package dataset

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type notFoundErr struct{}

func (notFoundErr) Error() string   { return "not found" }
func (notFoundErr) StatusCode() int { return 404 }

type serverErr struct{}

func (serverErr) Error() string   { return "boom" }
func (serverErr) StatusCode() int { return 500 }

type fakeSchemaClient struct {
	tables []Table
	fields map[string][]Field
	values map[string][]string
	err    error
}

func (f *fakeSchemaClient) Tables(context.Context) ([]Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

func (f *fakeSchemaClient) TableFields(_ context.Context, table string) ([]Field, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fields[table], nil
}

func (f *fakeSchemaClient) FieldValues(_ context.Context, table, field string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[table+"."+field], nil
}

func TestFilterFields(t *testing.T) {
	in := []Field{
		{FieldName: "id", UniquenessPercent: 100},
		{FieldName: "patient_id", UniquenessPercent: 8},
		{FieldName: "gender", UniquenessPercent: 0.02},
		{FieldName: "mrn", UniquenessPercent: 100},
		{FieldName: "age", UniquenessPercent: 0.9},
	}
	got := FilterFields(in)

	var names []string
	for _, f := range got {
		names = append(names, f.FieldName)
	}
	if diff := cmp.Diff([]string{"gender", "age"}, names); diff != "" {
		t.Fatalf("filtered fields (-want +got):\n%s", diff)
	}
}

func TestBrowser_UsesLiveClient(t *testing.T) {
	client := &fakeSchemaClient{
		tables: []Table{{TableName: "patient", FieldCount: 3}},
		fields: map[string][]Field{
			"patient": {{FieldName: "gender", FieldType: "object", UniquenessPercent: 0.02}},
		},
	}
	b, err := NewBrowser(client)
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}

	tables, err := b.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 1 || tables[0].TableName != "patient" {
		t.Fatalf("tables: %+v", tables)
	}
}

func TestBrowser_FallsBackOnNotFound(t *testing.T) {
	b, err := NewBrowser(&fakeSchemaClient{err: fmt.Errorf("fetch: %w", notFoundErr{})})
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}

	tables, err := b.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables via fallback: %v", err)
	}
	if len(tables) == 0 {
		t.Fatal("fallback must supply tables")
	}

	fields, err := b.TableFields(context.Background(), "patient")
	if err != nil {
		t.Fatalf("TableFields via fallback: %v", err)
	}
	for _, f := range fields {
		if f.FieldName == "patient_id" {
			t.Fatal("identifier fields must be filtered even from the fallback schema")
		}
	}

	values, err := b.FieldValues(context.Background(), "patient", "gender", 2)
	if err != nil {
		t.Fatalf("FieldValues via fallback: %v", err)
	}
	if diff := cmp.Diff([]string{"F", "M"}, values); diff != "" {
		t.Fatalf("fallback values respect limit (-want +got):\n%s", diff)
	}
}

func TestBrowser_OtherErrorsPropagate(t *testing.T) {
	b, err := NewBrowser(&fakeSchemaClient{err: serverErr{}})
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	if _, err := b.Tables(context.Background()); err == nil {
		t.Fatal("a 500 must not trigger the fallback")
	}
}

func TestFallback_ParsesBundledSchema(t *testing.T) {
	f := NewFallback()

	tables, err := f.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	byName := make(map[string]Table, len(tables))
	for _, tb := range tables {
		byName[tb.TableName] = tb
	}
	for _, want := range []string{"patient", "labs", "diagnoses", "medications"} {
		if _, ok := byName[want]; !ok {
			t.Fatalf("bundled schema missing table %q", want)
		}
	}

	fields, err := f.TableFields(context.Background(), "labs")
	if err != nil {
		t.Fatalf("TableFields: %v", err)
	}
	byField := make(map[string]Field, len(fields))
	for _, fl := range fields {
		byField[fl.FieldName] = fl
	}

	if got := byField["result_value"]; got.FieldType != "float64" {
		t.Fatalf("result_value type: %q", got.FieldType)
	}
	if got := byField["result_date"]; got.FieldType != "datetime" {
		t.Fatalf("result_date type: %q", got.FieldType)
	}
	if got := byField["abnormal_flag"]; got.FieldType != "bool" {
		t.Fatalf("abnormal_flag type: %q", got.FieldType)
	}
	if got := byField["test_name"]; got.FieldType != "object" || len(got.SampleValues) == 0 {
		t.Fatalf("test_name: %+v", got)
	}
	if got := byField["result_value"]; got.MinValue == nil || *got.MaxValue != 1200 {
		t.Fatalf("result_value bounds: %+v", got)
	}
}

func TestFallback_UnknownTable(t *testing.T) {
	f := NewFallback()
	if _, err := f.TableFields(context.Background(), "nope"); err == nil {
		t.Fatal("unknown table must error")
	}
}
