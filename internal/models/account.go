package models

// Account - учётная запись, предлагаемая в окне выбора аккаунта провайдера.
type Account struct {
	// ID — e-mail (google) или имя пользователя (github).
	ID   string
	Name string
	// AddNew — пункт «войти с другим аккаунтом».
	AddNew bool
}
