package identity

const (
	msgAlreadyRegistered = "指定されたメールアドレスで登録されたユーザーは既に存在します。"
	msgPendingResent     = "指定されたメールアドレスで登録されたユーザーは既に存在しますが、メールアドレス未認証で仮登録状態です。\n" +
		"認証リンクが含まれたメールを再度送信しました。メールを確認して認証を完了させて下さい。\n" +
		"※受信ボックスにメールが見つからない場合は、迷惑メールフォルダをご確認ください。"
	msgPasswordPolicy   = "パスワードは半角英数字8文字以上で、アルファベットと数字をそれぞれ1文字以上含む必要があります。"
	msgWrongCredentials = "メールアドレスまたはパスワードが間違っています。"
	msgNotConfirmed     = "このユーザーは仮登録の状態です。\nメールアドレス認証が完了していません。\n" +
		"認証リンクが含まれたメールを確認して頂き認証を完了させてから再度サインインして下さい。\n" +
		"※受信ボックスにメールが見つからない場合は、迷惑メールフォルダをご確認ください。"
	msgRefreshInvalid = "リフレッシュトークンが無効です。サインインし直して下さい。"
	msgRefreshMissing = "リフレッシュトークンがCookieに設定されていません。サインインし直して下さい。"
	msgDeleteInvalid  = "アクセストークンが無効なため、ユーザーの削除に失敗しました。"
	msgUserNotFound   = "指定されたメールアドレスで登録されたユーザーは存在しません。"
	msgCodeMismatch   = "認証コードが間違っています。"
	msgCodeExpired    = "認証コードの有効期限が切れています。"
	msgInvalidInput   = "入力内容が不正です。"
	msgUpstream       = "認証サービスに接続できませんでした。時間をおいて再度お試し下さい。"
)
