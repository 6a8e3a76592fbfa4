package gdoc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	docs "google.golang.org/api/docs/v1"
)

// bulletPreset is the list preset reapplied to inserted text when the
// replaced region was bulleted.
const bulletPreset = "BULLET_DISC_CIRCLE_SQUARE"

// Plan is the minimal edit derived from one translated match.
type Plan struct {
	NativeStart   int64
	NativeEnd     int64
	Insert        string
	ReapplyBullet bool
}

// Result reports what a patch operation did.
type Result struct {
	Updated bool   `json:"updated"`
	Matches int    `json:"matches"`
	Method  string `json:"method,omitempty"`
}

// Methods reported in Result.Method.
const (
	MethodNamedRange     = "replaceNamedRangeContent"
	MethodReplaceAllText = "replaceAllText"
	MethodDeleteInsert   = "deleteInsert"
)

// Patcher locates blocks of original content in a document and rewrites them
// in place. Each call reads the document fresh; nothing is cached between
// operations because native indexes do not survive structural edits.
type Patcher struct {
	svc    DocumentService
	logger *slog.Logger
}

// NewPatcher creates a Patcher over the given document service.
func NewPatcher(svc DocumentService, logger *slog.Logger) *Patcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Patcher{svc: svc, logger: logger.With("component", "patcher")}
}

// ReplaceText finds original inside the document and replaces it with
// replacement, preserving formatting. mode selects first-occurrence or
// replace-all semantics.
//
// A block that cannot be located, or whose match cannot be translated to
// native addresses, is reported as zero matches with the document left
// untouched. Original content is never deleted on an uncertain match.
func (p *Patcher) ReplaceText(ctx context.Context, docID, original, replacement string, mode Mode) (Result, error) {
	// Trim once so the text matched and the text handed to replaceAllText
	// are the same string. The matcher ignores surrounding whitespace, and
	// a padded block would otherwise make the service replace nothing.
	original = strings.TrimSpace(original)

	doc, err := p.svc.Get(ctx, docID)
	if err != nil {
		return Result{}, err
	}

	snap := BuildSnapshot(doc)
	match := FindBlock(snap.FlatText, original, mode)
	if len(match.Spans) == 0 {
		p.logger.Warn("block not found in document", "doc_id", docID, "block_len", len(original))
		return Result{Updated: false, Matches: 0}, nil
	}

	plans := p.translateSpans(docID, snap, match.Spans, replacement)
	if len(plans) == 0 {
		return Result{Updated: false, Matches: 0}, nil
	}

	// Exact single-occurrence matches outside list regions use a temporary
	// named range so inline character styling at the boundaries survives the
	// substitution. Everything else goes through explicit delete+insert.
	if match.Literal && !anyBulleted(plans) {
		if mode == ModeAll && len(plans) > 1 {
			reqs := []*docs.Request{{
				ReplaceAllText: &docs.ReplaceAllTextRequest{
					ContainsText: &docs.SubstringMatchCriteria{Text: original, MatchCase: true},
					ReplaceText:  replacement,
				},
			}}
			if err := p.svc.BatchUpdate(ctx, docID, reqs); err != nil {
				return Result{}, err
			}
			return Result{Updated: true, Matches: len(plans), Method: MethodReplaceAllText}, nil
		}

		if err := p.svc.BatchUpdate(ctx, docID, namedRangeRequests(plans[0], replacement)); err != nil {
			return Result{}, err
		}
		return Result{Updated: true, Matches: len(plans), Method: MethodNamedRange}, nil
	}

	// Apply plans back to front inside one batch so each edit's indexes are
	// unaffected by the edits that follow it.
	sort.Slice(plans, func(i, j int) bool { return plans[i].NativeStart > plans[j].NativeStart })

	var reqs []*docs.Request
	for _, plan := range plans {
		reqs = append(reqs, plan.requests()...)
	}
	if err := p.svc.BatchUpdate(ctx, docID, reqs); err != nil {
		return Result{}, err
	}
	return Result{Updated: true, Matches: len(plans), Method: MethodDeleteInsert}, nil
}

// translateSpans converts match spans into edit plans, dropping spans whose
// native addresses cannot be derived. Dropped spans are logged and skipped
// rather than failing the whole operation.
func (p *Patcher) translateSpans(docID string, snap *Snapshot, spans []Span, replacement string) []Plan {
	plans := make([]Plan, 0, len(spans))
	for _, span := range spans {
		start, end, err := snap.Translate(span)
		if err != nil {
			p.logger.Warn("skipping untranslatable match",
				"doc_id", docID, "flat_start", span.Start, "flat_end", span.End, "error", err)
			continue
		}

		plan := Plan{NativeStart: start, NativeEnd: end, Insert: replacement}
		if snap.Bulleted(start, end) {
			plan.ReapplyBullet = true
			plan.Insert = StripBulletPrefixes(replacement)
		}
		plans = append(plans, plan)
	}
	return plans
}

// requests renders a plan as an atomic delete-then-insert pair, with list
// styling reapplied over the inserted range when required.
func (plan Plan) requests() []*docs.Request {
	reqs := []*docs.Request{
		{DeleteContentRange: &docs.DeleteContentRangeRequest{
			Range: &docs.Range{StartIndex: plan.NativeStart, EndIndex: plan.NativeEnd},
		}},
	}
	if plan.Insert == "" {
		return reqs
	}
	reqs = append(reqs, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: plan.NativeStart},
			Text:     plan.Insert,
		},
	})
	if plan.ReapplyBullet {
		insertEnd := plan.NativeStart + int64(utf8.RuneCountInString(plan.Insert))
		reqs = append(reqs, &docs.Request{
			CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
				Range:        &docs.Range{StartIndex: plan.NativeStart, EndIndex: insertEnd},
				BulletPreset: bulletPreset,
			},
		})
	}
	return reqs
}

// namedRangeRequests substitutes the exact native range through a temporary
// named range: create, replace content, discard.
func namedRangeRequests(plan Plan, replacement string) []*docs.Request {
	name := fmt.Sprintf("patch-%s", uuid.NewString())
	return []*docs.Request{
		{CreateNamedRange: &docs.CreateNamedRangeRequest{
			Name:  name,
			Range: &docs.Range{StartIndex: plan.NativeStart, EndIndex: plan.NativeEnd},
		}},
		{ReplaceNamedRangeContent: &docs.ReplaceNamedRangeContentRequest{
			NamedRangeName: name,
			Text:           replacement,
		}},
		{DeleteNamedRange: &docs.DeleteNamedRangeRequest{Name: name}},
	}
}

func anyBulleted(plans []Plan) bool {
	for _, plan := range plans {
		if plan.ReapplyBullet {
			return true
		}
	}
	return false
}

// DocumentText returns the document's readable text flattened to a single
// string, suitable for feeding the whole resume back to a model.
func (p *Patcher) DocumentText(ctx context.Context, docID string) (string, error) {
	doc, err := p.svc.Get(ctx, docID)
	if err != nil {
		return "", err
	}
	return BuildSnapshot(doc).FlatText, nil
}

// PrependText inserts text at the very top of a document, separated from the
// existing content by a blank line.
func (p *Patcher) PrependText(ctx context.Context, docID, text string) error {
	if text == "" {
		return nil
	}
	reqs := []*docs.Request{{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     text + "\n\n",
		},
	}}
	return p.svc.BatchUpdate(ctx, docID, reqs)
}
