package integration

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/GunnarEriksson/askme"
	"github.com/PuerkitoBio/goquery"
	qt "github.com/frankban/quicktest"
)

func TestIndexPage(t *testing.T) {
	c := qt.New(t)

	c.Run("OK unauthenticated empty index page", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		resp, err := http.Get(tc.url("/"))
		c.Assert(err, qt.IsNil)
		c.Assert(200, qt.Equals, resp.StatusCode)
	})

	c.Run("OK unauthenticated single question index page", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		id, err := tc.createUser("alpha")
		c.Assert(err, qt.IsNil)

		question := askme.NewQuestion("Hur deklarerar man en array i PHP?", "body", id)
		err = tc.pgStore.InsertQuestion(question, []string{"php"})
		c.Assert(err, qt.IsNil)

		resp, err := http.Get(tc.url("/"))
		c.Assert(err, qt.IsNil)
		c.Assert(200, qt.Equals, resp.StatusCode)
		defer resp.Body.Close()
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		c.Assert("AskMe", qt.Equals, doc.Find("title").Text())
		a := doc.Find("a.question-title")
		c.Assert(a.AttrOr("href", ""), qt.Equals, "/questions/"+strconv.FormatInt(question.ID, 10))
		c.Assert(a.Text(), qt.Equals, "Hur deklarerar man en array i PHP?")
	})

	// 20 items, 3 per page
	c.Run("OK pagination", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		id, err := tc.createUser("alpha")
		c.Assert(err, qt.IsNil)

		for i := 0; i < 20; i++ {
			question := askme.NewQuestion("Foobar "+strconv.Itoa(i), "body", id)
			err := tc.pgStore.InsertQuestion(question, nil)
			c.Assert(err, qt.IsNil)
		}

		client := tc.newAuthenticatedClient()

		// newTestContext initializes the perPage count to 3
		resp, err := client.Get(tc.url("/"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		c.Run("results are paginated", func(c *qt.C) {
			count := doc.Find(".question-item").Length()
			c.Assert(count, qt.Equals, 3)
		})

		c.Run("have a link to the next page on the home", func(c *qt.C) {
			link := doc.Find("a.next-page")
			href, ok := link.Attr("href")

			c.Assert(ok, qt.IsTrue)
			c.Assert(link.Length(), qt.Equals, 1)
			c.Assert(href, qt.Equals, "/?page=1")
		})

		c.Run("have a prev and next link on the second page", func(c *qt.C) {
			href, ok := doc.Find("a.next-page").Attr("href")
			c.Assert(ok, qt.IsTrue)

			resp, err := client.Get(tc.url(href))
			c.Assert(err, qt.IsNil)
			defer resp.Body.Close()

			ddoc, err := goquery.NewDocumentFromReader(resp.Body)
			c.Assert(err, qt.IsNil)

			c.Assert(ddoc.Find("a.prev-page").Length(), qt.Equals, 1)
			c.Assert(ddoc.Find("a.next-page").Length(), qt.Equals, 1)
			c.Assert(ddoc.Find("a.prev-page").AttrOr("href", ""), qt.Equals, "/?page=0")
		})
	})
}

func TestAskQuestion(t *testing.T) {
	c := qt.New(t)

	c.Run("there is no ask link when not authenticated", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newHTTPClient()
		resp, err := client.Get(tc.url("/"))
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, 200)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		c.Assert(doc.Find("nav a.ask-link").Length(), qt.Equals, 0)
	})

	c.Run("cannot ask a question while not authenticated", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newHTTPClient()
		values := url.Values{
			"title": []string{"Hur centrerar man en div?"},
			"body":  []string{"margin auto?"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, 401)
	})

	c.Run("asking a question lands on its page", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newAuthenticatedClient()
		values := url.Values{
			"title": []string{"Hur centrerar man en div?"},
			"body":  []string{"Jag har provat `margin: auto`."},
			"tags":  []string{"CSS, html"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 200)
		c.Assert(resp.Request.URL.Path, qt.Matches, `/questions/\d+`)

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find("h1.question-title").Text(), qt.Equals, "Hur centrerar man en div?")
	})

	c.Run("tags are lowercased and listed", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newAuthenticatedClient()
		values := url.Values{
			"title": []string{"Tagged question"},
			"body":  []string{"body"},
			"tags":  []string{"CSS, html"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		resp.Body.Close()

		resp, err = client.Get(tc.url("/tags"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		labels := doc.Find("a.tag-label").Map(func(_ int, sel *goquery.Selection) string {
			return sel.Text()
		})
		c.Assert(labels, qt.DeepEquals, []string{"css", "html"})
	})

	c.Run("cannot ask without a body", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newAuthenticatedClient()
		values := url.Values{
			"title": []string{"Hur centrerar man en div?"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 400)
	})

	c.Run("cannot ask with an overlong title", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newAuthenticatedClient()
		values := url.Values{
			"title": []string{strings.Repeat("x", 129)},
			"body":  []string{"body"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 400)
	})

	c.Run("trim spaces on title when asking", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		client := tc.newAuthenticatedClient()
		values := url.Values{
			"title": []string{"Foo      "},
			"body":  []string{"body"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 200)

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find("h1.question-title").Text(), qt.Equals, "Foo")
	})
}

func TestVoting(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)
	tc.prepareServer()

	id, err := tc.createUser("alpha")
	c.Assert(err, qt.IsNil)

	question := askme.NewQuestion("Foobar", "body", id)
	err = tc.pgStore.InsertQuestion(question, nil)
	c.Assert(err, qt.IsNil)

	client := tc.newAuthenticatedClient()
	resp, err := client.Get(tc.url("/"))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, 200)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	c.Assert(err, qt.IsNil)

	action, ok := doc.Find(".question-item form.vote-form").Attr("action")
	c.Assert(ok, qt.IsTrue)

	c.Run("upvoting moves the score to one", func(c *qt.C) {
		resp, err := client.PostForm(tc.url(action), nil)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".question-head .question-score").Text(), qt.Equals, "1")
	})

	c.Run("the upvote arrow is gone after voting", func(c *qt.C) {
		resp, err := client.Get(tc.url("/"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".question-item form.vote-form").Length(), qt.Equals, 0)
		c.Assert(doc.Find(".question-item .vote-done").Length(), qt.Equals, 1)
	})

	c.Run("voting a second time is rejected", func(c *qt.C) {
		resp, err := client.PostForm(tc.url(action), nil)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".flash-notice").Text(), qt.Contains, "already voted")
		c.Assert(doc.Find(".question-head .question-score").Text(), qt.Equals, "1",
			qt.Commentf("the rejected vote must not move the score"))
	})

	c.Run("voting on own content is rejected", func(c *qt.C) {
		values := url.Values{
			"title": []string{"My own question"},
			"body":  []string{"body"},
		}
		resp, err := client.PostForm(tc.url("/submit"), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		ownPath := resp.Request.URL.Path
		resp, err = client.PostForm(tc.url(ownPath+"/vote"), nil)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".flash-notice").Text(), qt.Contains, "own contribution")
	})

	c.Run("downvoting moves the score down", func(c *qt.C) {
		other := tc.newAuthenticatedClient()

		values := url.Values{"dir": []string{"down"}}
		resp, err := other.PostForm(tc.url(action), values)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".question-head .question-score").Text(), qt.Equals, "0")
	})
}

func TestAnswering(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)
	tc.prepareServer()

	asker := tc.newAuthenticatedClient()
	values := url.Values{
		"title": []string{"Hur sorterar jag en lista?"},
		"body":  []string{"utan att ändra originalet"},
	}
	resp, err := asker.PostForm(tc.url("/submit"), values)
	c.Assert(err, qt.IsNil)
	resp.Body.Close()
	questionPath := resp.Request.URL.Path

	c.Run("cannot answer while unauthenticated", func(c *qt.C) {
		client := tc.newHTTPClient()
		resp, err := client.PostForm(tc.url(questionPath+"/answers"), url.Values{"body": []string{"sorted()"}})
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, 401)
	})

	c.Run("posting an answer shows it on the question page", func(c *qt.C) {
		answerer := tc.newAuthenticatedClient()
		resp, err := answerer.PostForm(tc.url(questionPath+"/answers"), url.Values{"body": []string{"Använd `sorted(lista)`."}})
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 200)

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".answer-item").Length(), qt.Equals, 1)
		c.Assert(doc.Find(".answer-body").Text(), qt.Contains, "sorted(lista)")
	})

	c.Run("commenting on an answer", func(c *qt.C) {
		commenter := tc.newAuthenticatedClient()
		resp, err := commenter.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		action, ok := doc.Find(".answer-comments form.comment-form").Attr("action")
		c.Assert(ok, qt.IsTrue)

		resp, err = commenter.PostForm(tc.url(action), url.Values{"body": []string{"Det här löste mitt problem."}})
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".comment-body").Text(), qt.Contains, "löste mitt problem")
	})
}

func TestAccepting(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)
	tc.prepareServer()

	asker := tc.newAuthenticatedClient() // fakeLogin1
	values := url.Values{
		"title": []string{"Vad är skillnaden mellan include och require?"},
		"body":  []string{"body"},
	}
	resp, err := asker.PostForm(tc.url("/submit"), values)
	c.Assert(err, qt.IsNil)
	resp.Body.Close()
	questionPath := resp.Request.URL.Path

	answerer := tc.newAuthenticatedClient() // fakeLogin2
	resp, err = answerer.PostForm(tc.url(questionPath+"/answers"), url.Values{"body": []string{"require avbryter skriptet"}})
	c.Assert(err, qt.IsNil)
	resp.Body.Close()

	c.Run("the accept control only shows for the question author", func(c *qt.C) {
		resp, err := answerer.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find("form.accept-form").Length(), qt.Equals, 0)
	})

	c.Run("viewing the page arms the accept action for the author", func(c *qt.C) {
		resp, err := asker.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		action, ok := doc.Find("form.accept-form").Attr("action")
		c.Assert(ok, qt.IsTrue)

		resp, err = asker.PostForm(tc.url(action), nil)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".accepted-badge").Length(), qt.Equals, 1)
		c.Assert(doc.Find(".flash-notice").Text(), qt.Contains, "accepted")
	})

	c.Run("accepting a missing answer is a 404", func(c *qt.C) {
		resp, err := asker.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		resp.Body.Close()

		resp, err = asker.PostForm(tc.url(questionPath+"/accept/666"), nil)
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, 404)
	})

	c.Run("accepting without arming bounces with a flash", func(c *qt.C) {
		// a second answer to have something acceptable
		resp, err := answerer.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		resp.Body.Close()

		resp, err = answerer.PostForm(tc.url(questionPath+"/answers"), url.Values{"body": []string{"include ger en varning"}})
		c.Assert(err, qt.IsNil)
		resp.Body.Close()

		resp, err = asker.Get(tc.url(questionPath))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)

		action, ok := doc.Find("form.accept-form").Attr("action")
		c.Assert(ok, qt.IsTrue)

		// redeem once, then replay the same action without revisiting
		resp, err = asker.PostForm(tc.url(action), nil)
		c.Assert(err, qt.IsNil)
		resp.Body.Close()

		resp, err = asker.PostForm(tc.url(action), nil)
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		ddoc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(ddoc.Find(".flash-warning").Text(), qt.Contains, "expired")
	})

	c.Run("the answer author profile shows the accept bonus", func(c *qt.C) {
		resp, err := http.Get(tc.url("/users/fakeLogin2"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 200)

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".breakdown-accepts .points").Text(), qt.Equals, "3")
	})
}

func TestUserProfile(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)
	tc.prepareServer()

	alpha, err := tc.createUser("alpha")
	c.Assert(err, qt.IsNil)
	beta, err := tc.createUser("beta")
	c.Assert(err, qt.IsNil)

	question := askme.NewQuestion("Foobar", "body", alpha)
	c.Assert(tc.pgStore.InsertQuestion(question, nil), qt.IsNil)

	answer := askme.NewAnswer(question.ID, "answer", alpha)
	c.Assert(tc.pgStore.InsertAnswer(answer), qt.IsNil)

	// beta upvotes the question and alpha's answer gets accepted
	_, err = askme.CastVote(tc.pgStore.QuestionVotes(), tc.pgStore, question.ID, beta, askme.Upvote)
	c.Assert(err, qt.IsNil)
	c.Assert(tc.pgStore.SwapAcceptedAnswer(question.ID, answer.ID), qt.IsNil)

	resp, err := http.Get(tc.url("/users/alpha"))
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, 200)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	c.Assert(err, qt.IsNil)

	// one question (5), one answer (3), one accepted answer (3), plus the
	// question's own score of 1
	c.Assert(doc.Find(".breakdown-questions .points").Text(), qt.Equals, "5")
	c.Assert(doc.Find(".breakdown-questions .rank").Text(), qt.Equals, "1")
	c.Assert(doc.Find(".breakdown-answers .points").Text(), qt.Equals, "3")
	c.Assert(doc.Find(".breakdown-accepts .points").Text(), qt.Equals, "3")
	c.Assert(doc.Find(".breakdown-total .rank-points").Text(), qt.Equals, "1")
	c.Assert(doc.Find(".breakdown-total .sum").Text(), qt.Equals, "12")

	c.Run("the voter profile counts the cast vote", func(c *qt.C) {
		resp, err := http.Get(tc.url("/users/beta"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		c.Assert(err, qt.IsNil)
		c.Assert(doc.Find(".breakdown-votes .points").Text(), qt.Equals, "1")
	})

	c.Run("unknown user is a 404", func(c *qt.C) {
		resp, err := http.Get(tc.url("/users/nobody"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, 404)
	})
}
