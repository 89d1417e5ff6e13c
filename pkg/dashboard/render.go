package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lkarlslund/tokenpool/pkg/gateway"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	badgeClaude  = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Render("[claude]")
	badgeGemini  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("[gemini]")
	badgePublic  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Render("[public]")
	activeMark   = okStyle.Render("●")
	inactiveMark = errStyle.Render("●")
)

// View renders the dashboard for the terminal: message, aggregate cards, the
// API access block and the token list, plus the open modal when one is
// active.
func View(m *Model, credential string) string {
	var b strings.Builder

	user := m.User()
	b.WriteString(titleStyle.Render("tokenpool") + "  " +
		dimStyle.Render(fmt.Sprintf("%s | quota %d", user.Username, user.DailyQuota)) + "\n\n")

	if msg := m.Message(); msg != nil {
		style := okStyle
		if msg.Kind == MessageError {
			style = errStyle
		}
		b.WriteString(style.Render(msg.Text) + "\n\n")
	}

	b.WriteString(statsRow(m) + "\n\n")

	b.WriteString(titleStyle.Render("API access") + "\n")
	b.WriteString(dimStyle.Render("base url: ") + BaseEndpoint(m.gw.BaseURL()) + "\n")
	if key := MaskedKey(credential); key != "" {
		b.WriteString(dimStyle.Render("api key:  ") + key + "\n")
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("My tokens (%d)", len(m.Tokens()))) + "\n")
	if len(m.Tokens()) == 0 {
		b.WriteString(dimStyle.Render("no tokens uploaded yet") + "\n")
	}
	for _, t := range m.Tokens() {
		b.WriteString(tokenLine(t) + "\n")
	}

	if m.Mode() != ModeClosed {
		b.WriteString("\n" + modalView(m) + "\n")
	}
	return b.String()
}

func statsRow(m *Model) string {
	user := m.User()
	cards := []string{
		card("my quota", strconv.FormatInt(user.DailyQuota, 10)),
		card("my tokens", strconv.Itoa(len(m.Tokens()))),
	}
	if s := m.Stats(); s != nil {
		cards = append(cards,
			card("pool valid", strconv.FormatInt(s.Tokens.Valid, 10)),
			card("today", strconv.FormatInt(s.TodayRequests, 10)),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label, value string) string {
	return cardStyle.Render(dimStyle.Render(label) + "\n" + titleStyle.Render(value))
}

func tokenLine(t gateway.Token) string {
	mark := inactiveMark
	if t.IsActive {
		mark = activeMark
	}
	badges := make([]string, 0, 3)
	if t.SupportsClaude {
		badges = append(badges, badgeClaude)
	}
	if t.SupportsGemini {
		badges = append(badges, badgeGemini)
	}
	if t.IsPublic {
		badges = append(badges, badgePublic)
	}
	line := fmt.Sprintf("%s #%-4d %s  ok:%d fail:%d", mark, t.ID, strings.Join(badges, " "), t.SuccessCount, t.FailureCount)
	if strings.TrimSpace(t.LastError) != "" {
		line += "  " + errStyle.Render(t.LastError)
	}
	return line
}

func modalView(m *Model) string {
	switch m.Mode() {
	case ModeUpload:
		d := m.Upload()
		return cardStyle.Render(titleStyle.Render("Upload token") + "\n" +
			dimStyle.Render("token:  ") + summarize(d.Token) + "\n" +
			dimStyle.Render("public: ") + strconv.FormatBool(d.Public))
	case ModeOAuthWaiting:
		d := m.OAuth()
		return cardStyle.Render(titleStyle.Render("OAuth authorization") + "\n" +
			dimStyle.Render("open this URL, authorize, then paste the redirect URL:") + "\n" +
			d.AuthURL + "\n" +
			dimStyle.Render("callback: ") + summarize(d.CallbackURL) + "\n" +
			dimStyle.Render("public:   ") + strconv.FormatBool(d.Public))
	case ModeManual:
		d := m.Manual()
		return cardStyle.Render(titleStyle.Render("Manual token entry") + "\n" +
			dimStyle.Render("access:  ") + summarize(d.AccessToken) + "\n" +
			dimStyle.Render("refresh: ") + summarize(d.RefreshToken) + "\n" +
			dimStyle.Render("expires: ") + d.ExpiresIn + "s\n" +
			dimStyle.Render("public:  ") + strconv.FormatBool(d.Public))
	default:
		return ""
	}
}

func summarize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return dimStyle.Render("(empty)")
	}
	if len(v) > 40 {
		return v[:37] + "..."
	}
	return v
}
