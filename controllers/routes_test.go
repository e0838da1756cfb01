package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"love-space-backend/config"
	"love-space-backend/controllers/gatetest"
	"love-space-backend/models/recording"
	"love-space-backend/models/status"
)

type GateTestSuite struct {
	suite.Suite

	env    *gatetest.Env
	client *http.Client
}

func (self *GateTestSuite) SetupTest() {
	self.env = gatetest.New(self.T())

	jar, err := cookiejar.New(nil)
	self.Require().NoError(err)
	self.client = &http.Client{Jar: jar}
}

func (self *GateTestSuite) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		self.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, self.env.Server.URL+path, reader)
	self.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return self.send(req)
}

func (self *GateTestSuite) send(req *http.Request) (int, map[string]interface{}) {
	resp, err := self.client.Do(req)
	self.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	self.Require().NoError(err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		self.Require().NoError(json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (self *GateTestSuite) unlock() {
	code, _ := self.do("POST", "/api/validate-password", "",
		map[string]string{"sharedPassword": gatetest.Passphrase})
	self.Require().Equal(http.StatusOK, code)
}

func (self *GateTestSuite) listRecordings(userID string) []recording.Recording {
	resp, err := self.client.Get(self.env.Server.URL + "/api/recordings/" + userID)
	self.Require().NoError(err)
	defer resp.Body.Close()
	self.Require().Equal(http.StatusOK, resp.StatusCode)

	var out []recording.Recording
	self.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (self *GateTestSuite) uploadRequest(token, fileName, contentType string, data []byte,
	caption, mood string) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	self.Require().NoError(err)
	_, err = part.Write(data)
	self.Require().NoError(err)

	self.Require().NoError(w.WriteField("caption", caption))
	self.Require().NoError(w.WriteField("mood", mood))
	self.Require().NoError(w.Close())

	req, err := http.NewRequest("POST", self.env.Server.URL+"/api/recordings", &buf)
	self.Require().NoError(err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (self *GateTestSuite) TestValidatePasswordRejectsEverythingElse() {
	for _, candidate := range []string{"", "coffee", "COFFEE-X-CIG", gatetest.Passphrase + " ", "💔"} {
		code, body := self.do("POST", "/api/validate-password", "",
			map[string]string{"sharedPassword": candidate})
		self.Equal(http.StatusUnauthorized, code, candidate)
		self.Equal("Invalid shared password", body["error"])
	}

	code, body := self.do("POST", "/api/validate-password", "",
		map[string]string{"sharedPassword": gatetest.Passphrase})
	self.Equal(http.StatusOK, code)
	self.Equal(true, body["success"])
}

func (self *GateTestSuite) TestValidatePasswordMalformedBody() {
	req, err := http.NewRequest("POST", self.env.Server.URL+"/api/validate-password",
		bytes.NewBufferString("{not json"))
	self.Require().NoError(err)
	code, _ := self.send(req)
	self.Equal(http.StatusUnauthorized, code)
}

func (self *GateTestSuite) TestValidateEmail() {
	for _, email := range []string{gatetest.MeEmail, gatetest.HerEmail} {
		code, body := self.do("POST", "/api/validate-email", "", map[string]string{"email": email})
		self.Equal(http.StatusOK, code, email)
		self.Equal(true, body["success"])
	}

	for _, email := range []string{"", "ME@example.com", "stranger@example.com", gatetest.MeEmail + "x"} {
		code, body := self.do("POST", "/api/validate-email", "", map[string]string{"email": email})
		self.Equal(http.StatusForbidden, code, email)
		self.Equal("Email not authorized for this app", body["error"])
	}
}

func (self *GateTestSuite) TestPartnerStatusDefaultsOffline() {
	code, body := self.do("GET", "/api/partner-status/"+gatetest.MeID, "", nil)
	self.Equal(http.StatusOK, code)
	self.Equal(map[string]interface{}{"is_online": false}, body)
}

func (self *GateTestSuite) TestSetPresenceThenPartnerSeesIt() {
	code, body := self.do("POST", "/api/user-status", "",
		map[string]interface{}{"userId": gatetest.HerID, "isOnline": true})
	self.Require().Equal(http.StatusOK, code)
	self.Equal(true, body["success"])

	code, body = self.do("GET", "/api/partner-status/"+gatetest.MeID, "", nil)
	self.Equal(http.StatusOK, code)
	self.Equal(true, body["is_online"])
	self.Equal(gatetest.HerID, body["user_id"])
	self.NotEmpty(body["last_seen"])
}

func (self *GateTestSuite) TestSetPresenceTwiceKeepsOneRow() {
	for i := 0; i < 2; i++ {
		code, _ := self.do("POST", "/api/user-status", "",
			map[string]interface{}{"userId": gatetest.MeID, "isOnline": true})
		self.Require().Equal(http.StatusOK, code)
		self.env.Clock.Advance(3 * time.Second)
	}

	var rows []status.UserStatus
	self.Require().NoError(self.env.DB.Where("user_id = ?", gatetest.MeID).Find(&rows).Error)
	self.Require().Len(rows, 1)
	self.True(rows[0].LastSeen.Equal(time.Date(2024, 2, 14, 19, 0, 3, 0, time.UTC)))
}

func (self *GateTestSuite) TestSetPresenceForSomeoneElseIsRefused() {
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	code, _ := self.do("POST", "/api/user-status", token,
		map[string]interface{}{"userId": gatetest.HerID, "isOnline": false})
	self.Equal(http.StatusForbidden, code)

	code, _ = self.do("POST", "/api/user-status", token,
		map[string]interface{}{"userId": gatetest.MeID, "isOnline": true})
	self.Equal(http.StatusOK, code)

	code, _ = self.do("POST", "/api/user-status", "garbage",
		map[string]interface{}{"userId": gatetest.MeID, "isOnline": true})
	self.Equal(http.StatusUnauthorized, code)
}

func (self *GateTestSuite) TestSetPresenceNeedsUserID() {
	code, _ := self.do("POST", "/api/user-status", "", map[string]interface{}{"isOnline": true})
	self.Equal(http.StatusBadRequest, code)
}

func (self *GateTestSuite) TestUploadThenListNewestFirst() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	code, _ := self.send(self.uploadRequest(token, "first.mp3", "audio/mpeg", []byte("one"), "", "Happy"))
	self.Require().Equal(http.StatusCreated, code)
	self.env.Clock.Advance(time.Minute)

	herToken := self.env.Token(self.T(), gatetest.HerID, gatetest.HerEmail)
	code, body := self.send(self.uploadRequest(herToken, "second.m4a", "audio/mp4",
		[]byte("two"), "miss you", "Sweet"))
	self.Require().Equal(http.StatusCreated, code)
	self.Equal("🥰 Sweet", body["mood"])

	// The user id in the path does not filter.
	recordings := self.listRecordings(gatetest.MeID)
	self.Require().Len(recordings, 2)

	newest := recordings[0]
	self.Equal(gatetest.HerID, newest.UserID)
	self.Equal(gatetest.HerEmail, newest.UserEmail)
	self.Equal("🥰 Sweet", newest.Mood)
	self.Require().NotNil(newest.Caption)
	self.Equal("miss you", *newest.Caption)

	obj, ok := self.env.Objects.Resolve(newest.AudioURL)
	self.Require().True(ok)
	self.Equal("two", string(obj.Data))

	self.Equal(gatetest.MeID, recordings[1].UserID)
	self.Nil(recordings[1].Caption)
}

func (self *GateTestSuite) TestUploadRejectsNonAudio() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	code, body := self.send(self.uploadRequest(token, "cat.png", "image/png", []byte("png"), "", ""))
	self.Equal(http.StatusUnsupportedMediaType, code)
	self.Equal("Please upload an audio file", body["error"])

	self.Equal(0, self.env.Objects.Puts())
	self.Empty(self.listRecordings(gatetest.MeID))
}

func (self *GateTestSuite) TestUploadCaptionTooLong() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	caption := string(bytes.Repeat([]byte("a"), 101))
	code, _ := self.send(self.uploadRequest(token, "a.mp3", "audio/mpeg", []byte("x"), caption, ""))
	self.Equal(http.StatusBadRequest, code)
	self.Equal(0, self.env.Objects.Puts())
}

func (self *GateTestSuite) TestUploadNeedsPassphraseAndToken() {
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	code, _ := self.send(self.uploadRequest(token, "a.mp3", "audio/mpeg", []byte("x"), "", ""))
	self.Equal(http.StatusForbidden, code)

	self.unlock()
	code, _ = self.send(self.uploadRequest("", "a.mp3", "audio/mpeg", []byte("x"), "", ""))
	self.Equal(http.StatusUnauthorized, code)

	stranger := self.env.Token(self.T(), "33333333-3333-3333-3333-333333333333", "stranger@example.com")
	code, _ = self.send(self.uploadRequest(stranger, "a.mp3", "audio/mpeg", []byte("x"), "", ""))
	self.Equal(http.StatusForbidden, code)

	self.Equal(0, self.env.Objects.Puts())
}

func (self *GateTestSuite) TestReactionKeepsRecordings() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)
	code, body := self.send(self.uploadRequest(token, "a.ogg", "audio/ogg", []byte("x"), "hi", ""))
	self.Require().Equal(http.StatusCreated, code)
	recordingID := body["id"].(string)

	herToken := self.env.Token(self.T(), gatetest.HerID, gatetest.HerEmail)
	code, body = self.do("POST", "/api/reactions", herToken,
		map[string]string{"recordingId": recordingID, "emoji": "❤️"})
	self.Require().Equal(http.StatusCreated, code)
	self.Equal(gatetest.HerID, body["user_id"])
	self.Equal("❤️", body["emoji"])

	recordings := self.listRecordings(gatetest.HerID)
	self.Require().Len(recordings, 1)
	self.Equal(recordingID, recordings[0].ID)

	var reactions []recording.Reaction
	self.Require().NoError(self.env.DB.Find(&reactions).Error)
	self.Len(reactions, 1)

	code, _ = self.do("POST", "/api/reactions", herToken, map[string]string{"recordingId": recordingID})
	self.Equal(http.StatusBadRequest, code)
}

func (self *GateTestSuite) TestReactionToUnknownRecording() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.HerID, gatetest.HerEmail)

	code, body := self.do("POST", "/api/reactions", token,
		map[string]string{"recordingId": "00000000-0000-0000-0000-000000000000", "emoji": "🔥"})
	self.Equal(http.StatusNotFound, code)
	self.Equal("Recording not found", body["error"])

	var reactions []recording.Reaction
	self.Require().NoError(self.env.DB.Find(&reactions).Error)
	self.Empty(reactions)
}

func (self *GateTestSuite) TestUploadTooLarge() {
	self.unlock()
	token := self.env.Token(self.T(), gatetest.MeID, gatetest.MeEmail)

	big := bytes.Repeat([]byte("x"), int(self.env.Config.MaxUploadBytes)+1)
	code, body := self.send(self.uploadRequest(token, "long.mp3", "audio/mpeg", big, "", ""))
	self.Equal(http.StatusRequestEntityTooLarge, code)
	self.Equal("File is too large", body["error"])

	self.Equal(0, self.env.Objects.Puts())
	self.Empty(self.listRecordings(gatetest.MeID))
}

func (self *GateTestSuite) TestProviderFailureIsRaw500() {
	self.Require().NoError(self.env.DB.Migrator().DropTable(&status.UserStatus{}))

	code, body := self.do("GET", "/api/partner-status/"+gatetest.MeID, "", nil)
	self.Equal(http.StatusInternalServerError, code)
	self.Contains(body["error"], "user_status")

	code, body = self.do("POST", "/api/user-status", "",
		map[string]interface{}{"userId": gatetest.MeID, "isOnline": true})
	self.Equal(http.StatusInternalServerError, code)
	self.Contains(body["error"], "user_status")
}

func (self *GateTestSuite) TestHealthAndMetrics() {
	code, body := self.do("GET", "/healthz", "", nil)
	self.Equal(http.StatusOK, code)
	self.Equal("ok", body["status"])

	resp, err := self.client.Get(self.env.Server.URL + "/metrics")
	self.Require().NoError(err)
	resp.Body.Close()
	self.Equal(http.StatusOK, resp.StatusCode)
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, &GateTestSuite{})
}

func TestBcryptPassphrase(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("latte"), bcrypt.MinCost)
	require.NoError(t, err)

	env := gatetest.New(t, func(cfg *config.Config) {
		cfg.SharedPassword = ""
		cfg.SharedPasswordBcrypt = string(hash)
	})

	post := func(candidate string) int {
		body, err := json.Marshal(map[string]string{"sharedPassword": candidate})
		require.NoError(t, err)
		resp, err := http.Post(env.Server.URL+"/api/validate-password", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post("latte"))
	assert.Equal(t, http.StatusUnauthorized, post(string(hash)))
	assert.Equal(t, http.StatusUnauthorized, post(""))
}
