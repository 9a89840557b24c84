package tui

import "github.com/existflow/diary/internal/guard"

type infoSection struct {
	heading string
	body    string
}

type infoPage struct {
	title    string
	sections []infoSection
}

// Static pages reachable with or without a session
var infoPages = map[guard.View]infoPage{
	guard.ViewAbout: {
		title: "О проекте",
		sections: []infoSection{
			{body: "Diary это личный дневник для коротких заметок. Заметки хранятся на сервере и доступны только владельцу аккаунта."},
			{heading: "Теги", body: "Каждая заметка помечена одним тегом: Work, Personal, Ideas или Reminders. Список можно отфильтровать по тегу и искать по заголовку и тексту."},
			{heading: "Сессия", body: "После входа токен сохраняется локально, поэтому повторно входить не нужно. Если сервер отклонит токен, приложение вернёт вас на экран входа."},
		},
	},
	guard.ViewFAQ: {
		title: "Вопросы и ответы",
		sections: []infoSection{
			{heading: "Код не пришёл", body: "Откройте экран подтверждения (ctrl+v), укажите email и нажмите ctrl+e. Код действует пять минут."},
			{heading: "Заметка пропала из списка", body: "Проверьте строку поиска и фильтр тега. Esc сбрасывает оба."},
			{heading: "Ошибка сети", body: "Убедитесь, что сервер запущен и адрес указан верно: diary config --server URL."},
			{heading: "Где хранятся данные", body: "Настройки, токен и журнал лежат в каталоге ~/.diary."},
		},
	},
	guard.ViewHowToStart: {
		title: "Как начать",
		sections: []infoSection{
			{heading: "1. Регистрация", body: "На экране входа нажмите ctrl+r, заполните имя пользователя, email и пароль. Пароль: от 8 символов, строчная и заглавная буква, цифра и один из символов !@#$%^&*."},
			{heading: "2. Подтверждение", body: "Введите шестизначный код из письма. После подтверждения вы сразу попадёте к заметкам."},
			{heading: "3. Заметки", body: "a добавляет заметку, e редактирует выбранную, d удаляет. ? показывает все клавиши."},
		},
	},
}
