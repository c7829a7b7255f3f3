package form

import "github.com/pribylovaa/auth-flow/internal/models"

// Демонстрационные аккаунты окна выбора. Последний пункт — «другой аккаунт».
var pickerAccounts = map[models.Provider][]models.Account{
	models.ProviderGoogle: {
		{ID: "john.doe@gmail.com", Name: "John Doe"},
		{ID: "jane.smith@gmail.com", Name: "Jane Smith"},
		{ID: "add.new@account.com", Name: "Use another account", AddNew: true},
	},
	models.ProviderGitHub: {
		{ID: "johndoe", Name: "John Doe"},
		{ID: "janesmith", Name: "Jane Smith"},
		{ID: "add_new", Name: "Sign in with another account", AddNew: true},
	},
}

// HasPicker сообщает, открывает ли провайдер окно выбора аккаунта.
func HasPicker(p models.Provider) bool {
	_, ok := pickerAccounts[p]
	return ok
}

// AccountsFor возвращает копию списка аккаунтов провайдера (nil, если выбора нет).
func AccountsFor(p models.Provider) []models.Account {
	accs, ok := pickerAccounts[p]
	if !ok {
		return nil
	}

	out := make([]models.Account, len(accs))
	copy(out, accs)
	return out
}

func findAccount(accs []models.Account, id string) (models.Account, bool) {
	for _, a := range accs {
		if a.ID == id {
			return a, true
		}
	}

	return models.Account{}, false
}
