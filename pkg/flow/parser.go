package flow

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/rocketplan/uiflow/pkg/core"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Step    int // 1-based step number, 0 when the error is about the whole document
	Message string
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Step > 0 {
		return fmt.Sprintf("%s: step %d: %s", loc, e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Unwrap lets errors.Is(err, core.ErrInvalidFlow) match parse failures.
func (e *ParseError) Unwrap() error {
	return core.ErrInvalidFlow
}

// ParseFile parses a flow document from disk.
func ParseFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided flow file
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses a flow document: a JSON (or YAML) list of step records, each
// an object with an "action" discriminator.
func Parse(data []byte, sourcePath string) (*Flow, error) {
	content := bytes.TrimSpace(data)
	if len(content) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "empty flow file"}
	}

	var (
		records []record
		err     error
	)
	if gjson.ValidBytes(content) {
		records, err = jsonRecords(content, sourcePath)
	} else {
		records, err = yamlRecords(content, sourcePath)
	}
	if err != nil {
		return nil, err
	}

	flow := &Flow{SourcePath: sourcePath}
	for i, rec := range records {
		step, err := decodeStep(rec, sourcePath, i+1)
		if err != nil {
			return nil, err
		}
		flow.Steps = append(flow.Steps, step)
	}
	return flow, nil
}

// record is one untyped step object, read field by field like a dict.
type record interface {
	get(key string) (string, bool)
	line() int
}

type jsonRecord struct {
	res gjson.Result
}

func (r jsonRecord) get(key string) (string, bool) {
	v := r.res.Get(gjson.Escape(key))
	if !v.Exists() || v.Type == gjson.Null {
		return "", false
	}
	return v.String(), true
}

func (r jsonRecord) line() int { return 0 }

type yamlRecord struct {
	node *yaml.Node
}

func (r yamlRecord) get(key string) (string, bool) {
	for i := 0; i < len(r.node.Content)-1; i += 2 {
		if r.node.Content[i].Value != key {
			continue
		}
		v := r.node.Content[i+1]
		if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
			return "", false
		}
		return v.Value, true
	}
	return "", false
}

func (r yamlRecord) line() int { return r.node.Line }

func jsonRecords(content []byte, sourcePath string) ([]record, error) {
	doc := gjson.ParseBytes(content)
	if !doc.IsArray() {
		return nil, &ParseError{Path: sourcePath, Message: "flow file must be a list of step objects"}
	}

	var records []record
	for i, item := range doc.Array() {
		if !item.IsObject() {
			return nil, &ParseError{Path: sourcePath, Step: i + 1, Message: "step must be an object"}
		}
		records = append(records, jsonRecord{res: item})
	}
	return records, nil
}

func yamlRecords(content []byte, sourcePath string) ([]record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid flow document: %v", err)}
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, &ParseError{Path: sourcePath, Line: root.Line, Message: "flow file must be a list of step objects"}
	}

	var records []record
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, &ParseError{Path: sourcePath, Line: item.Line, Step: i + 1, Message: "step must be an object"}
		}
		records = append(records, yamlRecord{node: item})
	}
	return records, nil
}

func decodeStep(rec record, sourcePath string, n int) (Step, error) {
	fail := func(format string, args ...interface{}) error {
		return &ParseError{Path: sourcePath, Line: rec.line(), Step: n, Message: fmt.Sprintf(format, args...)}
	}

	action, _ := rec.get("action")
	stepType := StepType(action)

	switch stepType {
	case StepStartApp:
		pkg, ok1 := rec.get("package")
		activity, ok2 := rec.get("activity")
		if !ok1 || !ok2 || pkg == "" || activity == "" {
			return nil, fail("start_app requires package and activity")
		}
		return &StartAppStep{BaseStep: BaseStep{StepType: stepType}, Package: pkg, Activity: activity}, nil

	case StepWait:
		d := DefaultWait
		if raw, ok := rec.get("seconds"); ok {
			secs, err := strconv.ParseFloat(raw, 64)
			if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
				return nil, fail("wait seconds must be a non-negative number, got %q", raw)
			}
			d = time.Duration(secs * float64(time.Second))
		}
		return &WaitStep{BaseStep: BaseStep{StepType: stepType}, Duration: d}, nil

	case StepTap:
		return &TapStep{
			BaseStep: BaseStep{StepType: stepType},
			Selector: selectorFrom(rec, "text", "desc"),
		}, nil

	case StepInput:
		value, _ := rec.get("value")
		return &InputStep{
			BaseStep: BaseStep{StepType: stepType},
			Selector: selectorFrom(rec, "text_selector", "desc_selector"),
			Value:    value,
		}, nil

	case StepTapFromSummary:
		summary, ok := rec.get("summary")
		if !ok || summary == "" {
			return nil, fail("tap_from_summary requires summary")
		}
		raw, ok := rec.get("index")
		if !ok {
			return nil, fail("tap_from_summary requires index")
		}
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fail("tap_from_summary index must be an integer, got %q", raw)
		}
		return &TapFromSummaryStep{BaseStep: BaseStep{StepType: stepType}, Summary: summary, Index: idx}, nil

	case StepBack:
		return &BackStep{BaseStep: BaseStep{StepType: stepType}}, nil

	default:
		return &UnknownStep{BaseStep: BaseStep{StepType: stepType}, Action: action}, nil
	}
}

func selectorFrom(rec record, textKey, descKey string) Selector {
	var sel Selector
	if v, ok := rec.get(textKey); ok {
		sel.Text = Str(v)
	}
	if v, ok := rec.get(descKey); ok {
		sel.Desc = Str(v)
	}
	sel.IDContains, _ = rec.get("id_contains")
	return sel
}
