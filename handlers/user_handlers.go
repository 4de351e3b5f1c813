package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"Restore/config"
	"Restore/jwt"
	"Restore/middleware"
	"Restore/models"
	"Restore/problem"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword returns the rules password breaks, keyed by rule name.
func ValidatePassword(password string) map[string][]string {
	var isUpper, isLower, isNumber, isSpecial bool
	for _, s := range password {
		switch {
		case unicode.IsUpper(s):
			isUpper = true
		case unicode.IsLower(s):
			isLower = true
		case unicode.IsDigit(s):
			isNumber = true
		case !unicode.IsLetter(s):
			isSpecial = true
		}
	}

	errs := map[string][]string{}
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs["PasswordTooShort"] = []string{"Passwords must be at least 6 characters."}
	}
	if !isSpecial {
		errs["PasswordRequiresNonAlphanumeric"] = []string{"Passwords must have at least one non alphanumeric character."}
	}
	if !isNumber {
		errs["PasswordRequiresDigit"] = []string{"Passwords must have at least one digit ('0'-'9')."}
	}
	if !isLower {
		errs["PasswordRequiresLower"] = []string{"Passwords must have at least one lowercase ('a'-'z')."}
	}
	if !isUpper {
		errs["PasswordRequiresUpper"] = []string{"Passwords must have at least one uppercase ('A'-'Z')."}
	}
	return errs
}

func IsUserEmailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func duplicateUserName(email string) []string {
	return []string{"Username '" + email + "' is already taken."}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a Member account. Every broken rule is reported
// at once, keyed the way the client expects.
func RegisterHandler(c *gin.Context, db *gorm.DB) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		bindProblem(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	errs := ValidatePassword(req.Password)
	if !ValidateEmail(req.Email) {
		errs["InvalidEmail"] = []string{"Email '" + req.Email + "' is invalid."}
	}

	exists, err := IsUserEmailExists(db, req.Email)
	if err != nil {
		problem.Internal(c, "Could not check the email", err)
		return
	}
	if exists {
		errs["DuplicateUserName"] = duplicateUserName(req.Email)
	}
	if len(errs) > 0 {
		problem.Validation(c, errs)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		problem.Internal(c, "Could not hash the password", err)
		return
	}

	user := models.User{
		Email:        req.Email,
		UserName:     req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleMember,
	}
	if err := db.Create(&user).Error; err != nil {
		// a concurrent registration can win the unique index after the check
		if exists, _ := IsUserEmailExists(db, req.Email); exists || errors.Is(err, gorm.ErrDuplicatedKey) {
			problem.Validation(c, map[string][]string{"DuplicateUserName": duplicateUserName(req.Email)})
			return
		}
		problem.Internal(c, "Could not save the user", err)
		return
	}

	c.Status(http.StatusOK)
}

// LoginHandler checks the credentials and issues a token, as an HttpOnly
// cookie when useCookies=true and in the body otherwise.
func LoginHandler(c *gin.Context, db *gorm.DB, signer *jwt.Signer, auth config.AuthConfig) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		bindProblem(c, err)
		return
	}

	var user models.User
	err := db.First(&user, "email = ?", strings.TrimSpace(req.Email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusUnauthorized, "Unauthorized", "Failed")
			return
		}
		problem.Internal(c, "Could not load the user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		problem.Abort(c, http.StatusUnauthorized, "Unauthorized", "Failed")
		return
	}

	expires := time.Now().Add(auth.TokenTTL)
	token, err := signer.GenerateToken(jwt.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, expires)
	if err != nil {
		problem.Internal(c, "Could not sign the token", err)
		return
	}

	err = db.Unscoped().
		Where("user_id = ? AND expiration_time < ?", user.ID, time.Now()).
		Delete(&models.LoginToken{}).
		Error
	if err != nil {
		slog.WarnContext(c, "could not prune expired login tokens", "userId", user.ID, "error", err)
	}

	// the row is what lets a logout revoke the token
	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: expires,
		UserID:         user.ID,
		Role:           user.Role,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		problem.Internal(c, "Could not save the login", err)
		return
	}

	if c.Query("useCookies") == "true" {
		setCookie(c, auth.CookieName, token, auth.TokenTTL, auth.CookieSecure)
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokenType":   "Bearer",
		"accessToken": token,
		"expiresIn":   int64(auth.TokenTTL.Seconds()),
	})
}

// LogOutHandler revokes the caller's token, if any, and clears the cookie.
func LogOutHandler(c *gin.Context, db *gorm.DB, auth config.AuthConfig) {
	if token, exists := c.Get(middleware.KeyToken); exists {
		if err := db.Unscoped().Where("token = ?", token).Delete(&models.LoginToken{}).Error; err != nil {
			problem.Internal(c, "Could not sign out", err)
			return
		}
	}

	clearCookie(c, auth.CookieName, auth.CookieSecure)
	c.Status(http.StatusNoContent)
}

// GetUserInfoHandler answers 204 for anonymous callers so the client can
// check the session without an error.
func GetUserInfoHandler(c *gin.Context, db *gorm.DB) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	var user models.User
	if err := db.First(&user, identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		problem.Internal(c, "Could not load the user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"username": user.UserName,
		"roles":    []string{user.Role},
	})
}

func GetAddressHandler(c *gin.Context, db *gorm.DB) {
	identity, _ := middleware.CurrentIdentity(c)

	var user models.User
	if err := db.Preload("Address").First(&user, identity.UserID).Error; err != nil {
		problem.Internal(c, "Could not load the user", err)
		return
	}
	if user.Address == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, user.Address)
}

// SaveAddressHandler replaces the caller's saved address.
func SaveAddressHandler(c *gin.Context, db *gorm.DB) {
	identity, _ := middleware.CurrentIdentity(c)

	var address models.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		bindProblem(c, err)
		return
	}

	saved, err := saveUserAddress(db, identity.UserID, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		problem.Abort(c, http.StatusBadRequest, "Problem updating user address", "")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// saveUserAddress overwrites the user's address row, creating it on first use.
func saveUserAddress(db *gorm.DB, userID uint, address models.Address) (models.Address, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if user.AddressID != nil {
			address.ID = *user.AddressID
			return tx.Save(&address).Error
		}

		address.ID = 0
		if err := tx.Create(&address).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("address_id", address.ID).Error
	})
	return address, err
}

func GetUserListHandler(c *gin.Context, db *gorm.DB) {
	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		problem.Internal(c, "Could not load users", err)
		return
	}

	userList := make([]gin.H, 0, len(users))
	for _, user := range users {
		userList = append(userList, gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.UserName,
			"role":     user.Role,
		})
	}
	c.JSON(http.StatusOK, userList)
}
