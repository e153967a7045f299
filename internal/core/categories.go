package core

// SuggestedCategories returns the conventional category sets per kind.
// They are suggestions for pickers only and are never enforced when a
// transaction is validated.
func SuggestedCategories() map[Kind][]string {
	return map[Kind][]string{
		KindIncome:  {"Salary", "Freelance", "Investment", "Bonus", "Business", "Rental", "Other"},
		KindExpense: {"Food & Dining", "Transportation", "Utilities", "Healthcare", "Entertainment", "Shopping", "Education", "Travel", "Groceries", "Other"},
		KindEMI:     {"Home Loan", "Car Loan", "Personal Loan", "Credit Card", "Education Loan", "Other"},
	}
}
