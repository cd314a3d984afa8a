package safety

// healthVocabulary marks text as health-relevant. A turn containing any of
// these terms is never redirected as out of scope.
var healthVocabulary = []string{
	"pain", "ache", "dizzy", "dizziness", "nausea", "headache", "migraine",
	"fever", "cough", "cold", "flu", "rash", "skin", "injury", "swelling",
	"anxious", "anxiety", "stress", "panic", "sad", "depressed", "mood",
	"sleep", "insomnia", "tired", "fatigue", "exhausted",
	"symptom", "health", "wellness", "self care", "self-care",
	"medicine", "medication", "doctor", "clinic", "hospital",
	"diet", "exercise", "hydration", "breathing", "heart",
	"cancer", "diabetes", "blood pressure", "x-ray", "xray",
	"report", "prescription", "document",
	"not feeling well", "feel unwell", "feeling sick",
}

// outOfScopePatterns flag general-knowledge requests that the assistant
// redirects elsewhere when no health vocabulary is present.
var outOfScopePatterns = []string{
	"capital of", "who won", "sports score", "stock price", "bitcoin",
	"write code", "write a poem", "write an essay", "translate",
	"weather today", "what is the weather", "recipe for",
	"homework", "math problem", "solve this equation",
	"movie", "song lyrics", "celebrity", "election",
	"tell me a joke", "play a game",
}

// diagnosisPhrases block requests for a medical diagnosis.
var diagnosisPhrases = []string{
	"diagnose", "diagnosis", "is this cancer", "do i have", "what disease",
	"what condition do i", "what illness",
}

// dosagePhrases block requests for medication dosage advice.
var dosagePhrases = []string{
	"dosage", "dose", "how much medicine", "how many mg",
	"how many tablets", "how many pills",
}

// emergencyPhrases trigger the emergency override.
var emergencyPhrases = []string{
	"suicide", "kill myself", "end my life", "self harm",
	"can't breathe", "cannot breathe", "can not breathe",
	"severe chest pain", "heart attack", "stroke",
	"collapse", "fainted", "unconscious",
	"overdose", "bleeding heavily",
}

// MsgEmergency is the fixed referral returned when the emergency override
// trips.
const MsgEmergency = "This sounds serious. Please seek immediate medical help or contact local emergency services."
