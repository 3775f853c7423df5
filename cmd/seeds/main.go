package main

import (
	"fmt"

	"github.com/GunnarEriksson/askme"
	"github.com/GunnarEriksson/askme/cmd"
	"github.com/GunnarEriksson/askme/pgstore"
	"github.com/rs/zerolog/log"
)

var users = []string{"doe", "ask", "moa", "kim", "von"}

type seedQuestion struct {
	title   string
	body    string
	tags    []string
	answers []string
}

var questions = []seedQuestion{
	{
		title: "Hur deklarerar man en array i PHP?",
		body: `Jag har precis börjat med PHP och undrar hur man skapar en array.

Går det att blanda nycklar och värden i samma array?`,
		tags: []string{"php", "arrays"},
		answers: []string{
			"Använd `array()` eller den korta syntaxen `[]`. Nycklar och värden kan blandas fritt.",
			"Sedan PHP 5.4 räcker det med `$a = [1, 2, 3];`.",
		},
	},
	{
		title: "Vad är skillnaden mellan include och require?",
		body:  "Båda verkar läsa in en fil, men när ska man använda vilken?",
		tags:  []string{"php"},
		answers: []string{
			"`require` avbryter skriptet med ett fel om filen saknas, `include` ger bara en varning.",
		},
	},
	{
		title: "Hur sorterar jag en lista i Python utan att ändra originalet?",
		body:  "Jag vill ha en sorterad kopia av listan men `list.sort()` ändrar den på plats.",
		tags:  []string{"python", "sortering"},
		answers: []string{
			"Använd `sorted(lista)`, den returnerar en ny lista och lämnar originalet orört.",
			"Alternativt kopiera först med `lista[:]` och sortera kopian.",
		},
	},
	{
		title: "Varför blir min SQL-fråga så långsam med LIKE '%ord%'?",
		body: `Tabellen har några miljoner rader och frågan tar flera sekunder.

Finns det något sätt att snabba upp sökningen?`,
		tags: []string{"sql", "prestanda"},
		answers: []string{
			"Ett inledande jokertecken gör att index inte kan användas. Titta på fulltextindex i stället.",
		},
	},
	{
		title:   "Hur centrerar man en div med CSS?",
		body:    "Klassikern. Jag har provat `margin: auto` men den vägrar hamna i mitten vertikalt.",
		tags:    []string{"css", "html"},
		answers: []string{},
	},
}

var comments = []string{
	"Bra fråga, har undrat samma sak!",
	"Det här löste mitt problem, tack.",
	"Kan du visa lite mer av din kod?",
	"Se även dokumentationen, den har bra exempel.",
}

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Seeding database")

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)
	err = pg.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't connect to database")
	}

	var userIDs []int64
	for _, u := range users {
		id, err := pg.CreateOrUpdateUser(u, u+"@example.se")
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create user")
		}
		userIDs = append(userIDs, id)
	}

	for i, sq := range questions {
		authorID := userIDs[i%len(userIDs)]
		question := askme.NewQuestion(sq.title, sq.body, authorID)
		err = pg.InsertQuestion(question, sq.tags)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create question")
		}

		var answers []*askme.Answer
		for j, body := range sq.answers {
			answerAuthorID := userIDs[(i+j+1)%len(userIDs)]
			answer := askme.NewAnswer(question.ID, body, answerAuthorID)
			err = pg.InsertAnswer(answer)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create answer")
			}
			answers = append(answers, answer)

			comment := askme.NewAnswerComment(answer.ID, comments[j%len(comments)], authorID)
			err = pg.InsertComment(comment)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create comment")
			}
		}

		comment := askme.NewQuestionComment(question.ID, comments[i%len(comments)], userIDs[(i+2)%len(userIDs)])
		err = pg.InsertComment(comment)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create comment")
		}

		// scatter a few votes through the real workflow so scores and
		// activity counters line up
		for j, voterID := range userIDs {
			if voterID == authorID || j%2 == 0 {
				continue
			}
			_, err = askme.CastVote(pg.QuestionVotes(), pg, question.ID, voterID, askme.Upvote)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't vote on question")
			}
		}
		for _, answer := range answers {
			voterID := userIDs[(i+3)%len(userIDs)]
			if voterID == answer.AuthorID {
				continue
			}
			_, err = askme.CastVote(pg.AnswerVotes(), pg, answer.ID, voterID, askme.Upvote)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't vote on answer")
			}
		}

		// the question author accepts the first answer
		if len(answers) > 0 {
			err = askme.AcceptAnswer(pg, pg, question, answers[0], authorID)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't accept answer")
			}
		}
	}
}
