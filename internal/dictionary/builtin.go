package dictionary

// builtinEntries is the bundled common-word set (en -> es). Keys are already
// in normalized form.
var builtinEntries = map[string]string{
	"the":       "el",
	"a":         "un",
	"an":        "un",
	"and":       "y",
	"or":        "o",
	"but":       "pero",
	"of":        "de",
	"in":        "en",
	"on":        "sobre",
	"at":        "en",
	"to":        "a",
	"with":      "con",
	"without":   "sin",
	"from":      "desde",
	"for":       "para",
	"by":        "por",
	"not":       "no",
	"yes":       "sí",
	"no":        "no",
	"i":         "yo",
	"you":       "tú",
	"he":        "él",
	"she":       "ella",
	"we":        "nosotros",
	"they":      "ellos",
	"this":      "esto",
	"that":      "eso",
	"what":      "qué",
	"who":       "quién",
	"where":     "dónde",
	"when":      "cuándo",
	"why":       "por qué",
	"how":       "cómo",
	"be":        "ser",
	"have":      "tener",
	"do":        "hacer",
	"say":       "decir",
	"go":        "ir",
	"come":      "venir",
	"see":       "ver",
	"know":      "saber",
	"think":     "pensar",
	"want":      "querer",
	"give":      "dar",
	"take":      "tomar",
	"make":      "hacer",
	"time":      "tiempo",
	"day":       "día",
	"night":     "noche",
	"year":      "año",
	"man":       "hombre",
	"woman":     "mujer",
	"child":     "niño",
	"people":    "gente",
	"house":     "casa",
	"water":     "agua",
	"food":      "comida",
	"book":      "libro",
	"word":      "palabra",
	"page":      "página",
	"story":     "historia",
	"world":     "mundo",
	"life":      "vida",
	"hand":      "mano",
	"eye":       "ojo",
	"good":      "bueno",
	"bad":       "malo",
	"big":       "grande",
	"small":     "pequeño",
	"new":       "nuevo",
	"old":       "viejo",
	"first":     "primero",
	"last":      "último",
	"long":      "largo",
	"little":    "pequeño",
	"own":       "propio",
	"other":     "otro",
	"same":      "mismo",
	"here":      "aquí",
	"there":     "allí",
	"now":       "ahora",
	"then":      "entonces",
	"always":    "siempre",
	"never":     "nunca",
	"again":     "otra vez",
	"because":   "porque",
	"before":    "antes",
	"after":     "después",
	"between":   "entre",
	"under":     "debajo de",
	"over":      "encima de",
	"read":      "leer",
	"write":     "escribir",
	"open":      "abrir",
	"close":     "cerrar",
	"begin":     "empezar",
	"end":       "fin",
	"love":      "amor",
	"friend":    "amigo",
	"morning":   "mañana",
	"evening":   "tarde",
	"beautiful": "hermoso",
	"important": "importante",
}
