package i18n

import "golang.org/x/text/language"

// Message keys. Every user-facing string goes through the catalog.
const (
	FieldRequired      = "field.required"
	FieldTooLong       = "field.too_long"
	FieldTooShort      = "field.too_short"
	FieldMinValue      = "field.min_value"
	FieldMaxValue      = "field.max_value"
	FieldInvalidEmail  = "field.invalid_email"
	FieldInvalidFormat = "field.invalid_format"
	FieldInvalidSlug   = "field.invalid_slug"
	FieldInvalidJSON   = "field.invalid_json"
	FieldUnknownID     = "field.unknown_id"

	UsernameInvalid  = "user.username_invalid"
	UsernameReserved = "user.username_reserved"
	UsernameTaken    = "user.username_taken"
	EmailTaken       = "user.email_taken"
	PasswordWrong    = "user.password_wrong"
	PasswordNumeric  = "user.password_numeric"
	UserNotFound     = "user.not_found"

	ConfirmationCodeInvalid = "auth.confirmation_code_invalid"
	CredentialsInvalid      = "auth.credentials_invalid"
	EmailNotConfirmed       = "auth.email_not_confirmed"
	AuthRequired            = "auth.required"
	TokenInvalid            = "auth.token_invalid"
	PermissionDenied        = "auth.permission_denied"
	ConfirmationSubject     = "auth.confirmation_subject"
	ConfirmationBody        = "auth.confirmation_body"

	IngredientsRequired  = "recipe.ingredients_required"
	TagsRequired         = "recipe.tags_required"
	IngredientsDuplicate = "recipe.ingredients_duplicate"
	TagsDuplicate        = "recipe.tags_duplicate"
	RecipeNameTaken      = "recipe.name_taken"
	RecipeNotFound       = "recipe.not_found"
	ImageInvalid         = "recipe.image_invalid"

	FavoriteAlreadyAdded = "favorite.already_added"
	FavoriteNotAdded     = "favorite.not_added"
	CartAlreadyAdded     = "cart.already_added"
	CartNotAdded         = "cart.not_added"
	ShoppingListEmpty    = "cart.empty"
	ShoppingListHeader   = "cart.header"

	SubscribeSelf    = "subscription.self"
	SubscribeTwice   = "subscription.twice"
	NotSubscribed    = "subscription.missing"
	AvatarRequired   = "avatar.required"
	TagNotFound      = "tag.not_found"
	TagTaken         = "tag.taken"
	IngredientExists = "ingredient.exists"
	NotFound         = "generic.not_found"
	ShortLinkUnknown = "shortlink.unknown"
	RateLimited      = "generic.rate_limited"
	InternalError    = "generic.internal"
)

var messages = map[language.Tag]map[string]string{
	language.Russian: {
		FieldRequired:      "Обязательное поле.",
		FieldTooLong:       "Убедитесь, что это значение содержит не более %s символов.",
		FieldTooShort:      "Убедитесь, что это значение содержит не менее %s символов.",
		FieldMinValue:      "Убедитесь, что это значение больше либо равно %s.",
		FieldMaxValue:      "Убедитесь, что это значение меньше либо равно %s.",
		FieldInvalidEmail:  "Введите правильный адрес электронной почты.",
		FieldInvalidFormat: "Некорректное значение.",
		FieldInvalidSlug:   "Слаг может содержать только латинские буквы, цифры, дефис и подчёркивание.",
		FieldInvalidJSON:   "Некорректный JSON в теле запроса.",
		FieldUnknownID:     "Недопустимый первичный ключ %s - объект не существует.",

		UsernameInvalid:  "Имя пользователя может содержать только буквы, цифры и символы @/./+/-/_.",
		UsernameReserved: "Имя пользователя \"me\" использовать нельзя.",
		UsernameTaken:    "Пользователь с таким именем уже существует.",
		EmailTaken:       "Пользователь с таким email уже существует.",
		PasswordWrong:    "Неверный текущий пароль.",
		PasswordNumeric:  "Введённый пароль состоит только из цифр.",
		UserNotFound:     "Пользователь не найден.",

		ConfirmationCodeInvalid: "Неверный код подтверждения.",
		CredentialsInvalid:      "Невозможно войти с предоставленными учетными данными.",
		EmailNotConfirmed:       "Email не подтвержден.",
		AuthRequired:            "Учетные данные не были предоставлены.",
		TokenInvalid:            "Недействительный токен.",
		PermissionDenied:        "У вас недостаточно прав для выполнения данного действия.",
		ConfirmationSubject:     "Код подтверждения Foodgram",
		ConfirmationBody:        "Здравствуйте, %s!\n\nВаш код подтверждения: %s\n",

		IngredientsRequired:  "Ингредиенты обязательны!",
		TagsRequired:         "Тэги обязательны!",
		IngredientsDuplicate: "Ингредиенты не могут повторяться!",
		TagsDuplicate:        "Тэги не могут повторяться!",
		RecipeNameTaken:      "У вас уже есть рецепт с таким названием.",
		RecipeNotFound:       "Рецепт не найден.",
		ImageInvalid:         "Загрузите правильное изображение.",

		FavoriteAlreadyAdded: "Рецепт уже добавлен в избранное!",
		FavoriteNotAdded:     "Рецепт не добавлен в избранное!",
		CartAlreadyAdded:     "Рецепт уже добавлен в список покупок!",
		CartNotAdded:         "Рецепт не добавлен в список покупок!",
		ShoppingListEmpty:    "Список покупок пуст!",
		ShoppingListHeader:   "Список покупок",

		SubscribeSelf:    "Нельзя подписаться на самого себя!",
		SubscribeTwice:   "Вы уже подписаны на этого пользователя!",
		NotSubscribed:    "Вы не подписаны на этого пользователя!",
		AvatarRequired:   "Аватар обязателен.",
		TagNotFound:      "Тэг не найден.",
		TagTaken:         "Тэг с таким названием или слагом уже существует.",
		IngredientExists: "Такой ингредиент уже существует.",
		NotFound:         "Страница не найдена.",
		ShortLinkUnknown: "Короткая ссылка не найдена.",
		RateLimited:      "Слишком много запросов. Повторите позже.",
		InternalError:    "Внутренняя ошибка сервера.",
	},
	language.English: {
		FieldRequired:      "This field is required.",
		FieldTooLong:       "Ensure this field has no more than %s characters.",
		FieldTooShort:      "Ensure this field has at least %s characters.",
		FieldMinValue:      "Ensure this value is greater than or equal to %s.",
		FieldMaxValue:      "Ensure this value is less than or equal to %s.",
		FieldInvalidEmail:  "Enter a valid email address.",
		FieldInvalidFormat: "Invalid value.",
		FieldInvalidSlug:   "Slug may contain only latin letters, digits, hyphens and underscores.",
		FieldInvalidJSON:   "Malformed JSON request body.",
		FieldUnknownID:     "Invalid pk %s - object does not exist.",

		UsernameInvalid:  "Username may contain only letters, digits and @/./+/-/_ characters.",
		UsernameReserved: "Username \"me\" is not allowed.",
		UsernameTaken:    "A user with that username already exists.",
		EmailTaken:       "A user with that email already exists.",
		PasswordWrong:    "Current password is incorrect.",
		PasswordNumeric:  "This password is entirely numeric.",
		UserNotFound:     "User not found.",

		ConfirmationCodeInvalid: "Invalid confirmation code.",
		CredentialsInvalid:      "Unable to log in with provided credentials.",
		EmailNotConfirmed:       "Email is not confirmed.",
		AuthRequired:            "Authentication credentials were not provided.",
		TokenInvalid:            "Invalid token.",
		PermissionDenied:        "You do not have permission to perform this action.",
		ConfirmationSubject:     "Foodgram confirmation code",
		ConfirmationBody:        "Hello, %s!\n\nYour confirmation code: %s\n",

		IngredientsRequired:  "Ingredients are required!",
		TagsRequired:         "Tags are required!",
		IngredientsDuplicate: "Ingredients must not repeat!",
		TagsDuplicate:        "Tags must not repeat!",
		RecipeNameTaken:      "You already have a recipe with this name.",
		RecipeNotFound:       "Recipe not found.",
		ImageInvalid:         "Upload a valid image.",

		FavoriteAlreadyAdded: "Recipe is already in favorites!",
		FavoriteNotAdded:     "Recipe is not in favorites!",
		CartAlreadyAdded:     "Recipe is already in the shopping list!",
		CartNotAdded:         "Recipe is not in the shopping list!",
		ShoppingListEmpty:    "The shopping list is empty!",
		ShoppingListHeader:   "Shopping list",

		SubscribeSelf:    "You cannot subscribe to yourself!",
		SubscribeTwice:   "You are already subscribed to this user!",
		NotSubscribed:    "You are not subscribed to this user!",
		AvatarRequired:   "Avatar is required.",
		TagNotFound:      "Tag not found.",
		TagTaken:         "A tag with this name or slug already exists.",
		IngredientExists: "This ingredient already exists.",
		NotFound:         "Not found.",
		ShortLinkUnknown: "Short link not found.",
		RateLimited:      "Too many requests. Try again later.",
		InternalError:    "Internal server error.",
	},
}
