package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	redCard   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7263D")).Bold(true)
	blackCard = lipgloss.NewStyle().Foreground(lipgloss.Color("#1B1B1E")).Background(lipgloss.Color("#F4F4F4"))
	youStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
	boxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderCard(c Card) string {
	if c.Suit.Red() {
		return redCard.Render(c.Label())
	}
	return blackCard.Render(c.Label())
}

func renderCards(cards []Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, renderCard(c))
	}
	return strings.Join(parts, " ")
}

func badges(p PlayerState) string {
	var b []string
	if p.IsDealer {
		b = append(b, "D")
	}
	if p.IsSmallBlind {
		b = append(b, "SB")
	}
	if p.IsBigBlind {
		b = append(b, "BB")
	}
	if p.Folded {
		b = append(b, "FOLDED")
	}
	if p.AllIn {
		b = append(b, "ALL IN")
	}
	return strings.Join(b, " ")
}

// Render draws a terminal summary of s from the point of view of player you.
func Render(s Snapshot, you string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hand #%d  %s  Pot: $%d", s.HandNumber, s.CurrentRound, s.TotalPot())
	if s.CurrentBet > 0 {
		fmt.Fprintf(&sb, "  Current Bet: $%d", s.CurrentBet)
	}
	sb.WriteString("\n")
	if len(s.CommunityCards) > 0 {
		sb.WriteString(renderCards(s.CommunityCards))
		sb.WriteString("\n")
	}

	for _, seat := range s.Players.Seats() {
		line := fmt.Sprintf("%s $%d", seat.ID, seat.State.Stack)
		if seat.State.Bet > 0 {
			line += fmt.Sprintf(" bet $%d", seat.State.Bet)
		}
		if b := badges(seat.State); b != "" {
			line += " [" + b + "]"
		}
		switch {
		case seat.ID == you:
			line = youStyle.Render(line)
			if len(seat.State.HoleCards) > 0 {
				line += " " + renderCards(seat.State.HoleCards)
			}
		case !seat.State.Active():
			line = dimStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
