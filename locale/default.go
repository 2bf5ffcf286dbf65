package locale

import "github.com/tbxark/hrbot/types"

// Default returns a fresh copy of the built-in table.
func Default() *Table {
	return &Table{
		Fallback:       types.LangRussian,
		LanguagePrompt: "Выбери язык / Choose language / Тилди танда:",
		Languages: []LanguageOption{
			{Label: "🇰🇬 Кыргызча", Code: types.LangKyrgyz},
			{Label: "🇷🇺 Русский", Code: types.LangRussian},
			{Label: "🇬🇧 English", Code: types.LangEnglish},
		},
		Questions: []Question{
			{Key: "about_you", Text: map[types.Lang]string{
				types.LangRussian: "Расскажи о себе.",
				types.LangKyrgyz:  "Өзүң тууралуу айтып бер.",
				types.LangEnglish: "Tell me about yourself.",
			}},
			{Key: "weaknesses", Text: map[types.Lang]string{
				types.LangRussian: "Твои слабые стороны?",
				types.LangKyrgyz:  "Алсыз жактарың?",
				types.LangEnglish: "Your weaknesses?",
			}},
			{Key: "interview_look", Text: map[types.Lang]string{
				types.LangRussian: "Что наденешь на интервью?",
				types.LangKyrgyz:  "Интервьюга эмне кийесиң?",
				types.LangEnglish: "What will you wear to the interview?",
			}},
		},
		Texts: map[types.Lang]*Texts{
			types.LangRussian: {
				Intro:           "Привет! Я твой личный HR-бот 🤖 Готов помочь с подготовкой к собеседованиям и тестам.",
				NextStep:        "Что хочешь сделать дальше?",
				PickOption:      "Выбери вариант из меню.",
				AnswerFirst:     "❗ Сначала ответь на вопросы.",
				NotImplemented:  "🚧 Этот раздел пока в разработке.",
				ChooseDirection: "Выбери IT-направление:",
				ChooseTestType:  "Выбери тип теста:",
				AskQuestion:     "✍️ Напиши свой вопрос, и я помогу:",
				Busy:            "⏳ Подожди, я ещё обрабатываю предыдущее сообщение.",
				InternalError:   "⚠️ Что-то пошло не так. Попробуй ещё раз.",

				Options:    []string{"🧠 Пройти тест", "📋 Получить советы", "💬 Задать вопрос", "🔁 Начать заново"},
				Directions: []string{"💻 Frontend", "🖥 Backend", "📱 Mobile", "🧠 Data Science"},
				TestTypes:  []string{"📚 Теория", "🛠 Практика"},

				FeedbackLabel:   "📋 Фидбек:",
				TestLabel:       "🧠 Тест:",
				TestResultLabel: "📊 Результат теста:",
				AnswerLabel:     "🧠 Ответ:",

				FeedbackPrompt:     "Проанализируй ответы и дай советы кандидату:",
				TestPrompt:         "Составь {test_type} по направлению {direction} на русском языке и ожидай ответы от пользователя.",
				AnalysisPrompt:     "Анализируй ответы пользователя на тест по теме:\n{test}\nОтветы:\n{answers}\nДай подробный анализ и советы.",
				FreeQuestionPrompt: "Ответь на вопрос пользователя и дай советы:\n{question}",

				APIError:        "❌ Ошибка API: {detail}",
				ConnectionError: "🚫 Ошибка подключения: {detail}",
			},
			types.LangKyrgyz: {
				Intro:           "Салам! Мен сенин жеке HR-ботуң 🤖 Мен интервью жана тестке даярданууга жардам берем.",
				NextStep:        "Эми эмне кылабыз?",
				PickOption:      "Менюдан вариант танда.",
				AnswerFirst:     "❗ Адегенде суроолорго жооп бер.",
				NotImplemented:  "🚧 Бул бөлүм азырынча иштелип жатат.",
				ChooseDirection: "IT багытын танда:",
				ChooseTestType:  "Тесттин түрүн танда:",
				AskQuestion:     "✍️ Сурооңду жаз, мен жардам берем:",
				Busy:            "⏳ Күтө тур, мурунку билдирүүңдү иштетип жатам.",
				InternalError:   "⚠️ Бир нерсе туура эмес болду. Кайра аракет кыл.",

				Options:    []string{"🧠 Тест", "📋 Кеңеш", "💬 Суроо берүү", "🔁 Башынан баштоо"},
				Directions: []string{"💻 Фронтенд", "🖥 Бэкенд", "📱 Мобилдик", "🧠 Дата Сайенс"},
				TestTypes:  []string{"📚 Теория", "🛠 Практика"},

				FeedbackLabel:   "📋 Пикир:",
				TestLabel:       "🧠 Тест:",
				TestResultLabel: "📊 Тесттин жыйынтыгы:",
				AnswerLabel:     "🧠 Жооп:",

				FeedbackPrompt:     "Жоопторду анализдеп кеңеш бер:",
				TestPrompt:         "{direction} багыты боюнча {test_type} тест түз жана колдонуучунун жоопторун күт.",
				AnalysisPrompt:     "Тест жана жоопторду анализдеп, кеңеш бер:\n{test}\nЖооптор:\n{answers}",
				FreeQuestionPrompt: "Колдонуучунун суроосуна жооп берип, кеңеш бер:\n{question}",

				APIError:        "❌ API катасы: {detail}",
				ConnectionError: "🚫 Туташуу катасы: {detail}",
			},
			types.LangEnglish: {
				Intro:           "Hey there! I'm your personal HR Bot 🤖 I'm here to help you prepare for interviews and tests.",
				NextStep:        "What would you like to do next?",
				PickOption:      "Pick an option from the menu.",
				AnswerFirst:     "❗ Answer the questions first.",
				NotImplemented:  "🚧 This section is not available yet.",
				ChooseDirection: "Choose an IT direction:",
				ChooseTestType:  "Choose the test type:",
				AskQuestion:     "✍️ Type your question and I'll help:",
				Busy:            "⏳ Hold on, I'm still working on your previous message.",
				InternalError:   "⚠️ Something went wrong. Please try again.",

				Options:    []string{"🧠 Take quiz", "📋 Get advice", "💬 Ask a question", "🔁 Restart"},
				Directions: []string{"💻 Frontend", "🖥 Backend", "📱 Mobile", "🧠 Data Science"},
				TestTypes:  []string{"📚 Theory", "🛠 Practice"},

				FeedbackLabel:   "📋 Feedback:",
				TestLabel:       "🧠 Test:",
				TestResultLabel: "📊 Test result:",
				AnswerLabel:     "🧠 Answer:",

				FeedbackPrompt:     "Analyze the answers and give advice:",
				TestPrompt:         "Create a {test_type} quiz for the {direction} field in English and wait for user's answers.",
				AnalysisPrompt:     "Analyze the user's test answers:\n{test}\nAnswers:\n{answers}\nGive detailed analysis and suggestions.",
				FreeQuestionPrompt: "Answer the user's question and give advice:\n{question}",

				APIError:        "❌ API error: {detail}",
				ConnectionError: "🚫 Connection error: {detail}",
			},
		},
	}
}
