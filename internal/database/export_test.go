package database

const GetTokenByUserIDQuery = getTokenByUserIDQuery
