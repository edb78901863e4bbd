package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewSearchValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("search_query", queryValidator),
		},
		{
			Rule: registerFn("principal_id", principalValidator),
		},
		{
			Rule: registerFn("item_id", itemIDValidator),
		},
	}
}
