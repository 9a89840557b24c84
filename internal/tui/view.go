package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/diary/internal/guard"
	"github.com/existflow/diary/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var mainContent string
	switch m.view {
	case guard.ViewAuth:
		mainContent = m.center(m.renderAuth())
	case guard.ViewVerify:
		mainContent = m.center(m.renderVerify())
	case guard.ViewNotes:
		mainContent = m.renderNotes()
	default:
		mainContent = m.center(m.renderInfo())
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) center(s string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		s,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func label(text string, focused bool) string {
	if focused {
		return FocusedLabelStyle.Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}

func (m Model) renderAuth() string {
	title := "Вход"
	if m.registering {
		title = "Регистрация"
	}

	content := HeaderStyle.Render("Diary · "+title) + "\n\n"
	if notice := m.session.Notice(); notice != "" {
		content += SuccessStyle.Render(notice) + "\n\n"
	}

	names := map[int]string{fieldUsername: "Имя пользователя", fieldEmail: "Email", fieldPassword: "Пароль"}
	for _, f := range m.authFields() {
		content += label(names[f], m.authFocus == f) + "\n"
		content += "  " + m.authInputs[f].View() + "\n\n"
	}

	err := m.session.LoginError()
	if m.registering {
		err = m.session.RegisterError()
	}
	if err != nil {
		content += ErrorStyle.Render(err.Error()) + "\n\n"
	}

	if m.session.Busy() {
		content += m.spinner.View() + " Подождите...\n\n"
	}

	toggle := "ctrl+r: регистрация"
	if m.registering {
		toggle = "ctrl+r: уже есть аккаунт"
	}
	content += HelpStyle.Render("enter: отправить  tab: поле  "+toggle) + "\n"
	content += HelpStyle.Render("ctrl+v: ввести код  F1-F3: справка  ctrl+c: выход")

	return FormStyle.Render(content)
}

func (m Model) renderVerify() string {
	st := m.session.State()

	content := HeaderStyle.Render("Diary · Подтверждение email") + "\n\n"
	if st.Pending() {
		content += LabelStyle.Render("Код отправлен на ") + lipgloss.NewStyle().Bold(true).Render(st.Email) + "\n\n"
	}

	content += label("Email", m.verifyFocus == fieldVerifyEmail) + "\n"
	content += "  " + m.verifyInputs[fieldVerifyEmail].View() + "\n\n"
	content += label("Код", m.verifyFocus == fieldCode) + "\n"
	content += "  " + m.verifyInputs[fieldCode].View() + "\n\n"

	if err := m.session.VerifyError(); err != nil {
		content += ErrorStyle.Render(err.Error()) + "\n"
	}
	if err := m.session.ResendError(); err != nil {
		content += ErrorStyle.Render(err.Error()) + "\n"
	}
	if msg := m.session.ResendMessage(); msg != "" {
		content += SuccessStyle.Render(msg) + "\n"
	}

	if m.session.Busy() {
		content += m.spinner.View() + " Подождите...\n"
	}

	content += "\n" + HelpStyle.Render("enter: подтвердить  ctrl+e: отправить код ещё раз  esc: назад")
	return FormStyle.Render(content)
}

func (m Model) renderNotes() string {
	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeAddNote, ModeEditNote:
		return m.center(m.renderModal())
	case ModeConfirmDelete:
		return m.center(m.renderConfirmDelete())
	}
	return m.renderNoteList()
}

func (m Model) renderNoteList() string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	header := HeaderStyle.Render("Мои заметки")
	header += "  " + FormatTag(m.tagFilter)
	if m.search != "" {
		header += HelpStyle.Render(fmt.Sprintf("  поиск: %q", m.search))
	}
	header += HelpStyle.Render(fmt.Sprintf("  (%d/%d)", len(m.visible()), m.notes.Len()))

	s := header + "\n\n"

	visible := m.visible()
	if len(visible) == 0 {
		switch {
		case !m.notes.Loaded():
			s += HelpStyle.Render("Загрузка...")
		case m.notes.Len() == 0:
			s += HelpStyle.Render("Заметок пока нет. Нажмите 'a', чтобы добавить.")
		default:
			s += HelpStyle.Render("Ничего не найдено.")
		}
		return NoteListStyle.Width(m.width).Height(m.height - 2).Render(s)
	}

	// each note takes two lines
	maxVisible := (m.height - 8) / 2
	if maxVisible < 1 {
		maxVisible = 1
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(visible) {
		end = len(visible)
	}

	for i := start; i < end; i++ {
		n := visible[i]

		style := NoteItemStyle
		if i == m.cursor {
			style = NoteItemSelectedStyle
		}

		badge := fmt.Sprintf("%-10s", "["+n.Tag.Display()+"]")
		date := n.CreatedAt.Local().Format("02.01.2006")
		titleWidth := width - 26
		if titleWidth < 10 {
			titleWidth = 10
		}
		line := style.Render(fmt.Sprintf("%-*s", titleWidth, truncate(n.Title, titleWidth)))
		if m.notes.Busy(n.ID) {
			line += " " + m.spinner.View()
		}

		s += TagStyle(n.Tag).Render(badge) + line + " " + HelpStyle.Render(date) + "\n"
		s += NoteBodyStyle.Render(truncate(firstLine(n.Content), width-6)) + "\n"
	}

	return NoteListStyle.Width(m.width).Height(m.height - 2).Render(s)
}

func (m Model) renderModal() string {
	title := "Новая заметка"
	if m.mode == ModeEditNote {
		title = "Редактирование"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += label("Заголовок", m.focus == fieldTitle) + "\n"
	content += m.title.View() + "\n\n"
	content += label("Текст", m.focus == fieldContent) + "\n"
	content += m.content.View() + "\n\n"

	tags := make([]string, 0, len(model.Tags))
	for _, t := range model.Tags {
		if t == m.noteTag {
			tags = append(tags, TagStyle(t).Underline(true).Render(t.Display()))
		} else {
			tags = append(tags, HelpStyle.Render(t.Display()))
		}
	}
	content += label("Тег", m.focus == fieldTag) + "  " + strings.Join(tags, "  ") + "\n\n"

	if err := m.notes.Err(); err != nil && errText(err) != "" {
		content += ErrorStyle.Render(errText(err)) + "\n\n"
	}

	content += HelpStyle.Render("ctrl+s: сохранить  tab: поле  ←/→: тег  esc: отмена")
	return ModalStyle.Render(content)
}

func (m Model) renderConfirmDelete() string {
	n, _ := m.notes.Get(m.deleteID)

	content := lipgloss.NewStyle().Bold(true).Foreground(Danger).Render("Удалить заметку?") + "\n\n"
	content += truncate(n.Title, 40) + "\n\n"
	content += HelpStyle.Render("y: удалить  n: отмена")
	return ModalStyle.Render(content)
}

func (m Model) renderStatusBar() string {
	if m.view == guard.ViewNotes && m.mode == ModeSearch {
		return StatusBarStyle.Width(m.width).Render("/" + m.searchIn.View())
	}

	help := "a:add  e:edit  d:del  /:search  t:tag  r:refresh  L:logout  ?:help  q:quit"
	switch m.view {
	case guard.ViewAuth, guard.ViewVerify:
		help = m.opts.ServerURL
	case guard.ViewNotes:
	default:
		help = "esc: назад"
	}
	if m.message != "" {
		help = m.message
	}

	if m.busy > 0 {
		help = m.spinner.View() + " " + help
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭──── Клавиши ─────────────────╮
│                              │
│  Навигация                   │
│  ─────────                   │
│  j/↓    Вниз                 │
│  k/↑    Вверх                │
│  g/G    В начало / в конец   │
│                              │
│  Заметки                     │
│  ───────                     │
│  a      Новая заметка        │
│  e      Редактировать        │
│  d      Удалить              │
│  /      Поиск                │
│  t      Фильтр по тегу       │
│  r      Обновить             │
│  esc    Сбросить фильтр      │
│                              │
│  Прочее                      │
│  ──────                      │
│  F1     О проекте            │
│  F2     Вопросы и ответы     │
│  F3     Как начать           │
│  L      Выйти из аккаунта    │
│  q      Выход                │
│                              │
╰──────────────────────────────╯

     Нажмите любую клавишу
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

func (m Model) renderInfo() string {
	page, ok := infoPages[m.view]
	if !ok {
		return ""
	}

	width := 70
	if m.width-6 < width {
		width = m.width - 6
	}

	content := HeaderStyle.Render(page.title) + "\n\n"
	for i, sec := range page.sections {
		if i > 0 {
			content += "\n"
		}
		if sec.heading != "" {
			content += lipgloss.NewStyle().Bold(true).Render(sec.heading) + "\n"
		}
		content += lipgloss.NewStyle().Width(width - 6).Render(sec.body) + "\n"
	}
	content += "\n" + HelpStyle.Render("esc: назад")
	return ModalStyle.Width(width).Render(content)
}
