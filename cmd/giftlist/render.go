package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/giftlist/internal/config"
	"github.com/MarcoPoloResearchLab/giftlist/internal/ownership"
	"github.com/MarcoPoloResearchLab/giftlist/internal/registry"
	"github.com/charmbracelet/lipgloss"
)

const (
	pricePrefix    = "¥"
	emptyListHint  = "No gifts yet."
	noListsMessage = "No gift lists in this profile."
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	claimed lipgloss.Style
	open    lipgloss.Style
	owner   lipgloss.Style
	plain   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Faint(true),
		claimed: r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		open:    r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		owner:   r.NewStyle().Italic(true),
		plain:   r.NewStyle(),
	}
}

// renderer writes command results either as styled text or as indented JSON.
type renderer struct {
	out    io.Writer
	json   bool
	styles styles
}

func newRenderer(out io.Writer, format string) *renderer {
	return &renderer{
		out:    out,
		json:   format == config.OutputFormatJSON,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

func (r *renderer) encode(value any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (r *renderer) line(parts ...string) error {
	_, err := fmt.Fprintln(r.out, strings.Join(parts, " "))
	return err
}

func (r *renderer) created(listID registry.ListID, shareURL string) error {
	if r.json {
		return r.encode(struct {
			ID       registry.ListID `json:"id"`
			ShareURL string          `json:"shareUrl"`
		}{ID: listID, ShareURL: shareURL})
	}
	if err := r.line(r.styles.label.Render("list created:"), listID.String()); err != nil {
		return err
	}
	return r.line(r.styles.label.Render("share link:"), shareURL)
}

func (r *renderer) listView(view registry.ListView, shareURL string) error {
	if r.json {
		return r.encode(struct {
			List     registry.List `json:"list"`
			CanEdit  bool          `json:"canEdit"`
			ShareURL string        `json:"shareUrl"`
		}{List: view.List, CanEdit: view.CanEdit, ShareURL: shareURL})
	}

	list := view.List
	var b strings.Builder
	b.WriteString(r.styles.title.Render(list.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", r.styles.label.Render("for:"), list.Celebrant)
	fmt.Fprintf(&b, "%s %s\n", r.styles.label.Render("date:"), list.Date)
	fmt.Fprintf(&b, "%s %s\n", r.styles.label.Render("share link:"), shareURL)
	if view.CanEdit {
		b.WriteString(r.styles.owner.Render("you created this list and can edit it"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(list.Gifts) == 0 {
		b.WriteString(r.styles.muted.Render(emptyListHint))
		b.WriteString("\n")
	}
	for _, gift := range list.Gifts {
		b.WriteString(r.giftBlock(gift))
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *renderer) giftBlock(gift registry.Gift) string {
	var b strings.Builder
	name := gift.Name
	if name == "" {
		name = registry.UnnamedGift
	}
	header := []string{"-", r.styles.label.Render(name)}
	if gift.Price != nil && *gift.Price != 0 {
		header = append(header, formatPrice(*gift.Price))
	}
	header = append(header, r.styles.muted.Render("["+gift.ID.String()+"]"))
	b.WriteString(strings.Join(header, " "))
	b.WriteString("\n")
	if gift.Link != nil && *gift.Link != "" {
		fmt.Fprintf(&b, "    link: %s\n", *gift.Link)
	}
	if gift.Note != nil && *gift.Note != "" {
		fmt.Fprintf(&b, "    note: %s\n", *gift.Note)
	}
	if gift.IsClaimed() {
		b.WriteString("    " + r.styles.claimed.Render("claimed by "+gift.Claimant()) + "\n")
	} else {
		b.WriteString("    " + r.styles.open.Render("available") + "\n")
	}
	return b.String()
}

type listSummary struct {
	ID        registry.ListID `json:"id"`
	Title     string          `json:"title"`
	Celebrant string          `json:"celebrant"`
	Date      string          `json:"date"`
	Gifts     int             `json:"gifts"`
	Claimed   int             `json:"claimed"`
	Owned     bool            `json:"owned"`
}

func (r *renderer) lists(lists []registry.List, viewer ownership.Capability) error {
	summaries := make([]listSummary, 0, len(lists))
	for _, list := range lists {
		summaries = append(summaries, listSummary{
			ID:        list.ID,
			Title:     list.Title,
			Celebrant: list.Celebrant,
			Date:      list.Date,
			Gifts:     len(list.Gifts),
			Claimed:   list.ClaimedCount(),
			Owned:     viewer.Grants(list.CreatorToken),
		})
	}
	if r.json {
		return r.encode(summaries)
	}
	if len(summaries) == 0 {
		return r.line(r.styles.muted.Render(noListsMessage))
	}

	headers := []string{"ID", "TITLE", "FOR", "DATE", "CLAIMED", "OWNER"}
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		owned := ""
		if summary.Owned {
			owned = "you"
		}
		rows = append(rows, []string{
			summary.ID.String(),
			summary.Title,
			summary.Celebrant,
			summary.Date,
			fmt.Sprintf("%d/%d", summary.Claimed, summary.Gifts),
			owned,
		})
	}
	_, err := io.WriteString(r.out, r.table(headers, rows))
	return err
}

// table pads every column to its widest cell, measured with lipgloss so wide runes line up.
func (r *renderer) table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = style.Render(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		b.WriteString(strings.TrimRight(strings.Join(rendered, "  "), " "))
		b.WriteString("\n")
	}
	writeRow(headers, r.styles.label)
	for _, row := range rows {
		writeRow(row, r.styles.plain)
	}
	return b.String()
}

func (r *renderer) giftAdded(listID registry.ListID, giftID registry.GiftID) error {
	if r.json {
		return r.encode(struct {
			ListID registry.ListID `json:"listId"`
			GiftID registry.GiftID `json:"giftId"`
		}{ListID: listID, GiftID: giftID})
	}
	return r.line(r.styles.label.Render("gift added:"), giftID.String())
}

func (r *renderer) status(message string, listID registry.ListID, giftID string) error {
	if r.json {
		return r.encode(struct {
			Status string          `json:"status"`
			ListID registry.ListID `json:"listId"`
			GiftID string          `json:"giftId"`
		}{Status: message, ListID: listID, GiftID: giftID})
	}
	return r.line(message+":", giftID)
}

func (r *renderer) claimed(listID registry.ListID, gift registry.Gift) error {
	if r.json {
		return r.encode(struct {
			ListID registry.ListID `json:"listId"`
			Gift   registry.Gift   `json:"gift"`
		}{ListID: listID, Gift: gift})
	}
	claimedAt := ""
	if gift.ClaimedAt != nil {
		claimedAt = time.UnixMilli(*gift.ClaimedAt).UTC().Format(time.RFC3339)
	}
	return r.line(r.styles.claimed.Render("claimed:"), gift.Name, "by", gift.Claimant(), r.styles.muted.Render(claimedAt))
}

func (r *renderer) token(capability ownership.Capability) error {
	if r.json {
		return r.encode(struct {
			CreatorToken string `json:"creatorToken"`
		}{CreatorToken: capability.Token().String()})
	}
	return r.line(capability.Token().String())
}

func (r *renderer) imported(summary registry.ImportSummary) error {
	if r.json {
		return r.encode(struct {
			Lists        []registry.ListID `json:"lists"`
			TokenAdopted bool              `json:"tokenAdopted"`
			Skipped      []string          `json:"skipped"`
		}{Lists: summary.Lists, TokenAdopted: summary.TokenAdopted, Skipped: summary.Skipped})
	}
	if err := r.line(r.styles.label.Render("lists imported:"), strconv.Itoa(len(summary.Lists))); err != nil {
		return err
	}
	for _, listID := range summary.Lists {
		if err := r.line("  -", listID.String()); err != nil {
			return err
		}
	}
	if summary.TokenAdopted {
		if err := r.line(r.styles.owner.Render("creator token adopted")); err != nil {
			return err
		}
	}
	if len(summary.Skipped) > 0 {
		return r.line(r.styles.muted.Render("skipped keys: " + strings.Join(summary.Skipped, ", ")))
	}
	return nil
}

func formatPrice(price float64) string {
	return pricePrefix + strconv.FormatFloat(price, 'f', 2, 64)
}
