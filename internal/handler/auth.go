package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCookieName = "__gsm_performance_token"
	// seule l'équipe Plaintes Diverses est découpée en groupes
	groupedTeam = "Plaintes Diverses"

	emailTakenMessage = "Cet e-mail est déjà utilisé"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type LoginResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

func otpKey(email string) string {
	return fmt.Sprintf("otp_%s_reset_password", email)
}

func (h *Handler) redisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "E-mail ou mot de passe incorrect")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "E-mail ou mot de passe incorrect")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !user.IsActive() {
		h.errorResponse(w, r, "Votre compte est en attente de validation par un administrateur")
		return
	}

	now := h.now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)
	ss, err := h.signToken(user, now, expiration)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, "Connexion réussie", LoginResponse{
		User:     user,
		Redirect: viewPath(user.Role.HomeView()),
	})
}

func (h *Handler) signToken(user *domain.User, now, expiration time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	return token.SignedString([]byte(h.config.JWT.Secret))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    authCookieName,
		Value:   "",
		Expires: h.now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "Déconnexion réussie", Redirect{Redirect: loginPath})
}

// Register crée un compte agent en attente ; un administrateur doit l'activer.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    string `json:"firstName" validate:"required"`
		LastName     string `json:"lastName" validate:"required"`
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=8"`
		Team         string `json:"team" validate:"required"`
		Group        string `json:"group"`
		Contact      string `json:"contact"`
		Neighborhood string `json:"neighborhood"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exists, err := h.repository.CheckEmailIfExists(r.Context(), req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, emailTakenMessage)
		return
	}

	team, err := h.lookupTeam(r.Context(), req.Team)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if team == nil {
		h.errorResponse(w, r, "Équipe inconnue")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleAgent,
		Team:         team.Name,
		Department:   team.Department,
		Contact:      req.Contact,
		Neighborhood: req.Neighborhood,
		Status:       domain.UserStatusPending,
	}
	if team.Name == groupedTeam {
		user.Group = req.Group
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		h.userWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "Inscription enregistrée, votre compte sera activé par un administrateur", nil)
}

// userWriteError traduit les violations de contraintes de la table users.
func (h *Handler) userWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
		h.errorResponse(w, r, emailTakenMessage)
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, repository.ErrEditConflict):
		h.errorResponse(w, r, "Le compte a été modifié entre-temps, veuillez réessayer")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	const sent = "Le code de réinitialisation a été envoyé par e-mail"

	user, err := h.repository.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// même réponse qu'en cas de succès, l'existence du compte n'est pas divulguée
			h.successResponse(w, r, sent, nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	if err := h.redisClient.Set(ctx, otpKey(user.Email), otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(r.Context(), domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   user.Email,
		Data: domain.ResetPasswordMailData{
			FullName:   user.Name(),
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // minutes dans le mail
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, sent, nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required,len=6"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	otp, err := h.redisClient.Get(ctx, otpKey(req.Email)).Result()
	if err != nil || otp != req.OTP {
		h.errorResponse(w, r, "Code de vérification incorrect")
		return
	}

	user, err := h.repository.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	user.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		h.userWriteError(w, r, err)
		return
	}

	if err := h.redisClient.Del(ctx, otpKey(req.Email)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Mot de passe réinitialisé", nil)
}
