package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dshills/workbench/internal/history"
	"github.com/dshills/workbench/internal/plugin"
	"github.com/dshills/workbench/internal/plugin/discovery"
)

func newTable(buf *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

func renderFeatures(features []*plugin.Feature) []byte {
	var buf bytes.Buffer
	t := newTable(&buf)
	t.AppendHeader(table.Row{"Category", "", "Name", "Display Name", "Description", "API", "Enabled"})
	for _, f := range features {
		m := f.Manifest()
		t.AppendRow(table.Row{m.Category.Label(), m.Icon, m.Name, m.DisplayName, m.Description, yesNo(m.RequiresAPIKey), yesNo(m.Enabled)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Render()
	return buf.Bytes()
}

func renderResult(res plugin.Result) []byte {
	var buf bytes.Buffer
	l := list.NewWriter()
	l.SetOutputMirror(&buf)
	l.SetStyle(list.StyleConnectedRounded)

	status := "success"
	if !res.Success {
		status = "failure"
	}
	l.AppendItem(status)
	l.Indent()
	if res.Message != "" {
		l.AppendItem("message: " + res.Message)
	}
	if res.Error != "" {
		l.AppendItem("error: " + res.Error)
	}
	if res.Data != nil {
		l.AppendItem(fmt.Sprintf("data: %v", res.Data))
	}
	l.UnIndent()
	l.Render()
	return buf.Bytes()
}

func renderCheck(loaded int, errs []discovery.Error, warnings []string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d features loaded, %d errors, %d warnings\n", loaded, len(errs), len(warnings))

	if len(errs) > 0 {
		t := newTable(&buf)
		t.AppendHeader(table.Row{"Type", "Path", "Message"})
		for _, e := range errs {
			t.AppendRow(table.Row{e.Type, e.FeaturePath, e.Message})
		}
		t.Render()
	}
	for _, w := range warnings {
		fmt.Fprintf(&buf, "warning: %s\n", w)
	}
	return buf.Bytes()
}

func renderHistory(entries []history.Entry) []byte {
	var buf bytes.Buffer
	t := newTable(&buf)
	t.AppendHeader(table.Row{"Started", "Feature", "Status", "Duration", "Message"})
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		t.AppendRow(table.Row{e.Started.Local().Format(time.DateTime), e.Feature, status, e.Duration, e.Message})
	}
	t.Render()
	return buf.Bytes()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
