package chat

// Fixed user-facing texts (pt-BR).
const (
	greetingRequest        = "Olá! Por favor, se apresente e me dê as primeiras opções para começar."
	postQuizRequest        = "O quiz terminou. Por favor, me dê novas sugestões de tópicos para continuar a conversa."
	initApology            = "Olá! Parece que estou com problemas para me conectar. Por favor, tente recarregar a página."
	submitApology          = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."
	malformedReplyFallback = "Desculpe, tive um problema ao processar a resposta. Tente novamente."

	errInitFailed        = "Falha ao iniciar a conversa. Verifique sua chave de API e a conexão."
	errSessionFailed     = "Não foi possível inicializar o chatbot. A chave de API está configurada?"
	errSubmitFailed      = "Falha ao obter resposta do modelo."
	errSuggestionsFailed = "Não foi possível obter novas sugestões."

	quizStartFormat    = "Ótimo! Vamos testar seus conhecimentos.\n\nPergunta 1: %s"
	quizQuestionFormat = "Pergunta %d: %s"
	quizCorrectFormat  = "Correto! %s"
	quizWrongFormat    = "Incorreto. A resposta certa era: \"%s\".\n\n%s"
	quizSummaryFormat  = "Quiz finalizado! Você acertou %d de %d perguntas. \n\n%s"
)

var tierMessages = map[Tier]string{
	TierPerfect:      "Uau, pontuação perfeita! Você é um expert no assunto!",
	TierExcellent:    "Excelente desempenho! Você realmente entendeu os conceitos principais.",
	TierGood:         "Bom trabalho! Você está no caminho certo para entender tudo sobre obsolescência programada.",
	TierKeepLearning: "Continue aprendendo! Cada erro é uma oportunidade. Que tal explorarmos mais algum tópico?",
}
