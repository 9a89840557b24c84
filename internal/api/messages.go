package api

// User-visible messages used when the server does not provide one
const (
	MsgRegisterFailed   = "Ошибка регистрации"
	MsgInvalidLogin     = "Неверное имя пользователя или пароль"
	MsgVerifyFailed     = "Ошибка верификации. Пожалуйста, проверьте код."
	MsgResendFailed     = "Ошибка повторной отправки кода."
	MsgListFailed       = "Ошибка получения заметок"
	MsgCreateFailed     = "Ошибка создания заметки"
	MsgDeleteFailed     = "Ошибка удаления заметки"
	MsgUpdateFailed     = "Failed to update note"
	MsgNotFound         = "Note not found or access denied"
	MsgUnauthorized     = "Unauthorized"
	MsgNetwork          = "Ошибка сети. Попробуйте снова или проверьте адрес сервера."
	MsgUnexpectedFormat = "Unexpected response from server"
)

// Operation names, used as error Op, log field and metric label
const (
	OpRegister   = "register"
	OpLogin      = "login"
	OpVerify     = "verify"
	OpResendCode = "resend_code"
	OpListNotes  = "list_notes"
	OpCreateNote = "create_note"
	OpUpdateNote = "update_note"
	OpDeleteNote = "delete_note"
)
